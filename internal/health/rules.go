package health

import "pastebin/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// ---------- RULES ----------

// Evictions are normal once the store is full; they are reported, not escalated.
func EvictionRule(snapshot map[string]int64) RuleResult {
	evicted := snapshot[string(metrics.PastesEvictedTotal)]

	if evicted > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Store is full and evicting the oldest pastes",
			Recommendation: "Raise buffer_size if pastes disappear sooner than users expect",
			Severity:       StatusOK,
		}
	}
	return RuleResult{}
}

// Overwrites mean a generated identifier collided with a live paste.
func CollisionRule(snapshot map[string]int64) RuleResult {
	overwritten := snapshot[string(metrics.PastesOverwrittenTotal)]

	if overwritten > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Identifier collisions replaced live pastes",
			Recommendation: "Lower buffer_size: the identifier space only holds a few thousand live pastes comfortably",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Rejections indicate clients sending pastes above max_paste_size.
func RejectionRule(snapshot map[string]int64) RuleResult {
	rejected := snapshot[string(metrics.PasteRejectedTotal)]

	if rejected > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Oversized pastes were rejected",
			Recommendation: "Check max_paste_size against what clients submit",
			Severity:       StatusOK,
		}
	}
	return RuleResult{}
}
