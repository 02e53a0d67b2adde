package reliability

// hoursPerYear is the standard reliability-engineering year length used
// to annualize LOLE and to convert a yearly failure rate into an hourly
// one for the outage-probability formula.
const hoursPerYear = 8760.0

// ElementReliability is one branch or generator's two-state failure
// model: FailureRatePerYear (λ, failures/year) and MeanRepairHours (r,
// hours per repair).
type ElementReliability struct {
	FailureRatePerYear float64
	MeanRepairHours    float64
}

// outageProbability returns r·λ/(1+r·λ) with λ normalized to per-hour
// first, so the ratio is dimensionless — spec §4.5's formula as written
// assumes λ and r share units; FailureRatePerYear/MeanRepairHours is the
// conventional power-system pairing, so the conversion happens here
// rather than asking callers to pre-normalize.
func (e ElementReliability) outageProbability() float64 {
	lambdaPerHour := e.FailureRatePerYear / hoursPerYear
	rl := e.MeanRepairHours * lambdaPerHour
	return rl / (1 + rl)
}

// ReliabilityData supplies the per-element failure model Run samples
// from. An element absent from the map never outages (probability 0).
type ReliabilityData struct {
	Branches   map[string]ElementReliability
	Generators map[string]ElementReliability
}

// ScenarioRecord is one Monte Carlo draw's outcome.
type ScenarioRecord struct {
	Index             int
	OutagedBranches   []string
	OutagedGenerators []string
	LossEvent         bool
	UnservedMW        float64
	AreaUnservedMW    map[int]float64
}

// AreaMetrics is one area's annualized reliability indices.
type AreaMetrics struct {
	LOLE float64 // hours/year
	EUE  float64 // MWh/year
}

// ReliabilityReport is Run's result. System LOLE is the bottleneck
// (maximum) area LOLE; system EUE is the sum of area EUE, per spec
// §4.5's multi-area extension — a network with no Area partitioning
// collapses to a single area (ID 0) and both reduce to the plain
// single-area computation.
type ReliabilityReport struct {
	LOLE      float64
	EUE       float64
	Areas     map[int]AreaMetrics
	Scenarios []ScenarioRecord
}
