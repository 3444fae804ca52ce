// Package idgen produces the short paste identifiers handed back to clients.
//
// An identifier is three characters: two decimal digits and one ASCII
// letter in a random order, e.g. "4a2", "Q07", "91z". The letter can sit in
// any of 3 positions next to 100 ordered digit pairs and 52 letters, so there
// are only 15600 distinct identifiers and a few hundred draws are enough to
// repeat one. Nothing here checks for collisions: storing under a live
// identifier overwrites the previous paste.
package idgen

import "math/rand/v2"

// Length is the number of characters in every identifier.
const Length = 3

// Space is the number of distinct identifiers Generate can return.
const Space = Length * 10 * 10 * 52

// Generate returns a fresh identifier. It is safe for concurrent use: the
// top-level math/rand/v2 functions draw from per-thread state without a
// shared lock.
func Generate() string {
	return generate(rand.IntN, rand.Shuffle)
}

// GenerateFrom returns an identifier drawn from r. r is not safe for
// concurrent use, so callers sharing r must serialize access.
func GenerateFrom(r *rand.Rand) string {
	return generate(r.IntN, r.Shuffle)
}

func generate(intN func(int) int, shuffle func(int, func(i, j int))) string {
	var letter byte
	if intN(2) == 0 {
		letter = 'a' + byte(intN(26))
	} else {
		letter = 'A' + byte(intN(26))
	}

	id := [Length]byte{
		'0' + byte(intN(10)),
		'0' + byte(intN(10)),
		letter,
	}
	shuffle(len(id), func(i, j int) { id[i], id[j] = id[j], id[i] })

	return string(id[:])
}

// Valid reports whether id has the shape Generate produces.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}

	digits, letters := 0, 0
	for i := 0; i < len(id); i++ {
		switch c := id[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			letters++
		default:
			return false
		}
	}
	return digits == 2 && letters == 1
}
