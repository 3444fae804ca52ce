package api

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>bin</title>
<style>
body { margin: 0; background: #282c34; color: #abb2bf; font-family: monospace; }
form { display: flex; flex-direction: column; height: 100vh; }
textarea { flex: 1; background: inherit; color: inherit; border: 0; padding: 1em; font: inherit; resize: none; outline: none; }
button { padding: 1em; background: #3e4451; color: inherit; border: 0; font: inherit; cursor: pointer; }
</style>
</head>
<body>
<form action="{{.BasePath}}" method="post">
<textarea name="val" placeholder="paste here, or: curl -X PUT --data-binary @file {{.BasePath}}" autofocus required></textarea>
<button type="submit">save</button>
</form>
</body>
</html>
`))

var pasteTemplate = template.Must(template.New("paste").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.ID}}</title>
<link rel="stylesheet" href="{{.BasePath}}/highlight.css">
<style>
body { margin: 0; background: #282c34; color: #abb2bf; }
a.new { position: fixed; top: 1em; right: 1em; color: inherit; font-family: monospace; }
pre.chroma { margin: 0; padding: 1em 0; counter-reset: line; }
pre.chroma code { display: block; white-space: pre-wrap; padding-left: 4em; position: relative; }
pre.chroma code::before { counter-increment: line; content: counter(line); position: absolute; left: 0; width: 3em; text-align: right; opacity: 0.4; }
</style>
</head>
<body>
<a class="new" href="{{.BasePath}}/">new</a>
<pre class="chroma">{{range .Lines}}<code>{{.}}</code>{{end}}</pre>
</body>
</html>
`))

type indexPage struct {
	BasePath string
}

type pastePage struct {
	ID       string
	BasePath string
	Lines    []template.HTML
}
