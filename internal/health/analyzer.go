package health

import (
	"strings"

	"pastebin/internal/logs"
	"pastebin/internal/metrics"
)

// Occupancy reports how full the paste store is.
type Occupancy interface {
	Len() int
	Capacity() int
}

// Analyzer converts metrics + logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logger  *logs.Logger
	store   Occupancy
	rules   []Rule
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(
	reg *metrics.Registry,
	logger *logs.Logger,
	store Occupancy,
) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logger:  logger,
		store:   store,
		rules: []Rule{
			EvictionRule,
			CollisionRule,
			RejectionRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	escalate := func(s Status) {
		if severity[s] > severity[status] {
			status = s
		}
	}

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		escalate(result.Severity)
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	renderFailures := 0
	panicCount := 0

	for _, entry := range a.logger.GetLast(100) {
		if entry.Level != logs.ERROR {
			continue
		}
		if strings.Contains(entry.Message, "render failed") {
			renderFailures++
		}
		if strings.Contains(entry.Message, "panic") {
			panicCount++
		}
	}

	if renderFailures >= 3 {
		signals = append(signals,
			"Repeated page render failures detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect template errors and the content being rendered",
		)
		escalate(StatusDegraded)
	}

	if panicCount > 0 {
		signals = append(signals,
			"Application panics detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect stack traces and stabilize error handling",
		)
		escalate(StatusCritical)
	}

	/* ---------- SUMMARY ---------- */

	summary := "Service is healthy"
	if status != StatusOK {
		summary = "Service health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
		Live:            a.store.Len(),
		Capacity:        a.store.Capacity(),
	}
}
