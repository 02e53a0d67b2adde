package sensitivity

// Violation records one monitored branch exceeding its thermal rating
// under one branch outage, per spec §4.6's N-1 estimate.
type Violation struct {
	// OutagedBranch is the branch assumed tripped.
	OutagedBranch string
	// MonitoredBranch is the branch whose post-contingency flow is
	// estimated.
	MonitoredBranch string
	// EstimatedFlowMW is f_ℓ^post, the LODF-projected flow.
	EstimatedFlowMW float64
	// RatingMVA is MonitoredBranch's thermal limit.
	RatingMVA float64
	// Severe marks an estimate exceeding Config.SeverityFactor times the
	// rating, escalated to a full AC recheck.
	Severe bool
	// ACRechecked reports whether the AC recheck actually ran (it is only
	// attempted for Severe violations, and only counts as run if the
	// recheck itself didn't error out).
	ACRechecked bool
	// ACFlowMW is the recheck's from-end flow on MonitoredBranch, valid
	// only when ACRechecked is true.
	ACFlowMW float64
	// ACConverged reports whether the recheck's AC solve converged.
	ACConverged bool
}

// Report is ScreenContingencies' result: every thermal violation found
// across every single-branch outage considered, sorted by outaged branch
// then monitored branch.
type Report struct {
	Violations []Violation
}
