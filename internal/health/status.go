package health

// Status represents overall service health.
type Status string

const (
	StatusOK       Status = "OK"
	StatusDegraded Status = "DEGRADED"
	StatusCritical Status = "CRITICAL"
)

// severity orders statuses so the analyzer can escalate.
var severity = map[Status]int{
	StatusOK:       0,
	StatusDegraded: 1,
	StatusCritical: 2,
}

// Report is the health summary served at /admin/health.
type Report struct {
	OverallStatus   Status   `json:"overall_status"`
	Summary         string   `json:"summary"`
	Signals         []string `json:"signals"`
	Recommendations []string `json:"recommendations"`
	Live            int      `json:"live"`
	Capacity        int      `json:"capacity"`
}
