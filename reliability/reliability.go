package reliability

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/gatcore/gat/arena"
	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/powerflow"
	"golang.org/x/sync/errgroup"
)

// Run evaluates a Monte Carlo composite-reliability study over n, per
// spec §4.5. Scenarios are independent and distributed across a fixed
// worker pool; each worker reduces its own slice of results, joined once
// every scenario has been processed.
func Run(n *network.Network, data ReliabilityData, opts ...Option) (*ReliabilityReport, error) {
	log := gatlog.Component("reliability.montecarlo")
	start := time.Now()

	cfg := newConfig(opts...)

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}
	if cfg.NScenarios <= 0 {
		return nil, gaterrors.NewDataValidation(ErrNonPositiveScenarioCount.Error())
	}
	if _, ok := n.SlackBusID(); !ok {
		return nil, gaterrors.NewDataValidation("reliability: no slack bus designated")
	}

	branchNames := make([]string, 0, len(data.Branches))
	for _, b := range n.Branches() {
		if _, ok := data.Branches[b.Name]; ok {
			branchNames = append(branchNames, b.Name)
		}
	}
	sort.Strings(branchNames)

	genNames := make([]string, 0, len(data.Generators))
	for _, g := range n.Generators() {
		if _, ok := data.Generators[g.Name]; ok {
			genNames = append(genNames, g.Name)
		}
	}
	sort.Strings(genNames)

	results := make([]ScenarioRecord, cfg.NScenarios)

	workerCount := cfg.MaxWorkers
	if workerCount > cfg.NScenarios {
		workerCount = cfg.NScenarios
	}
	if workerCount < 1 {
		workerCount = 1
	}
	log.Debug().Int("scenarios", cfg.NScenarios).Int("workers", workerCount).Msg("Monte Carlo study starting")

	indices := make(chan int)
	g, ctx := errgroup.WithContext(context.Background())

	for w := 0; w < workerCount; w++ {
		g.Go(func() error {
			intArena := arena.NewIntArena(64)
			floatArena := arena.NewFloat64Arena(64)
			for idx := range indices {
				if cfg.Cancel.Cancelled() {
					return gaterrors.NewCancelled()
				}
				if cfg.Deadline.Expired() {
					return gaterrors.NewTimeout(0)
				}
				rec, err := runScenario(n, data, cfg, idx, branchNames, genNames, intArena, floatArena)
				if err != nil {
					return err
				}
				results[idx] = rec
				intArena.Reset()
				floatArena.Reset()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < cfg.NScenarios; i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("Monte Carlo study aborted")
		return nil, err
	}

	report := reduce(results, cfg.NScenarios)
	log.Info().
		Int("scenarios", cfg.NScenarios).
		Float64("systemLOLE", report.LOLE).
		Float64("systemEUE", report.EUE).
		Dur("elapsed", time.Since(start)).
		Msg("Monte Carlo study finished")
	return report, nil
}

// reduce joins every worker's per-scenario results into the final report:
// overall loss-event count, per-area annualized LOLE/EUE, and system-wide
// LOLE/EUE per spec §4.5's multi-area bottleneck/sum rule.
func reduce(results []ScenarioRecord, nScenarios int) *ReliabilityReport {
	areaLossCount := make(map[int]int)
	areaEUE := make(map[int]float64)

	for _, r := range results {
		for area, mw := range r.AreaUnservedMW {
			areaEUE[area] += mw
			if r.LossEvent {
				areaLossCount[area]++
			}
		}
	}

	areas := make(map[int]AreaMetrics, len(areaEUE))
	var systemLOLE float64
	var systemEUE float64
	for area := range areaEUE {
		lole := float64(areaLossCount[area]) / float64(nScenarios) * hoursPerYear
		areas[area] = AreaMetrics{LOLE: lole, EUE: areaEUE[area]}
		if lole > systemLOLE {
			systemLOLE = lole
		}
		systemEUE += areaEUE[area]
	}

	return &ReliabilityReport{
		LOLE:      systemLOLE,
		EUE:       systemEUE,
		Areas:     areas,
		Scenarios: results,
	}
}

// runScenario samples one Monte Carlo draw, applies it to a clone of n,
// and estimates unserved load per spec §4.5 steps (i)-(iv): island buses
// lose their load entirely; within the reachable remainder, a generation
// capacity shortfall is apportioned across buses by load share; if
// capacity suffices, an AC solve is attempted (falling back to DC) purely
// as the feasibility check spec step (iii) calls for.
func runScenario(
	n *network.Network,
	data ReliabilityData,
	cfg Config,
	idx int,
	branchNames, genNames []string,
	intArena *arena.IntArena,
	floatArena *arena.Float64Arena,
) (ScenarioRecord, error) {
	rng := rand.New(rand.NewSource(int64(cfg.Seed ^ uint64(idx))))

	var outBranches, outGens []string
	for _, name := range branchNames {
		if rng.Float64() < data.Branches[name].outageProbability() {
			outBranches = append(outBranches, name)
		}
	}
	for _, name := range genNames {
		if rng.Float64() < data.Generators[name].outageProbability() {
			outGens = append(outGens, name)
		}
	}

	rec := ScenarioRecord{Index: idx, OutagedBranches: outBranches, OutagedGenerators: outGens}

	clone, err := n.ApplyScenario(network.Scenario{
		LoadScale:         1,
		RenewableScale:    1,
		OutagedBranches:   outBranches,
		OutagedGenerators: outGens,
	})
	if err != nil {
		return ScenarioRecord{}, gaterrors.NewNumericalIssue(err.Error())
	}

	busOrder := clone.BusOrder()
	nBus := len(busOrder)
	busPos := make(map[int]int, nBus)
	for i, id := range busOrder {
		busPos[id] = i
	}

	reachFlag := intArena.Alloc(nBus)
	loadBuf := floatArena.Alloc(nBus)
	capBuf := floatArena.Alloc(nBus)
	areaBuf := intArena.Alloc(nBus)

	for i, id := range busOrder {
		bus, _ := clone.BusByID(id)
		areaBuf[i] = bus.Area
	}
	for _, l := range clone.Loads() {
		loadBuf[busPos[l.BusID]] += l.ActiveMW
	}
	for _, gen := range clone.Generators() {
		if gen.Status {
			capBuf[busPos[gen.BusID]] += gen.PMax
		}
	}

	markReachable(clone, busPos, reachFlag)

	areaUnserved := make(map[int]float64)
	var reachableDemand, reachableCapacity float64
	for i := range busOrder {
		if reachFlag[i] == 0 {
			areaUnserved[areaBuf[i]] += loadBuf[i]
		} else {
			reachableDemand += loadBuf[i]
			reachableCapacity += capBuf[i]
		}
	}

	fullyConnected := true
	for i := range busOrder {
		if reachFlag[i] == 0 {
			fullyConnected = false
			break
		}
	}

	if reachableDemand > 0 && reachableCapacity < reachableDemand {
		shortfall := reachableDemand - reachableCapacity
		for i := range busOrder {
			if reachFlag[i] == 1 && loadBuf[i] > 0 {
				areaUnserved[areaBuf[i]] += shortfall * (loadBuf[i] / reachableDemand)
			}
		}
	} else if fullyConnected {
		ac, acErr := powerflow.SolveAC(clone)
		if acErr != nil || !ac.Converged {
			_, dcErr := powerflow.SolveDC(clone)
			if dcErr != nil {
				for i := range busOrder {
					if loadBuf[i] > 0 {
						areaUnserved[areaBuf[i]] += loadBuf[i]
					}
				}
			}
		}
	}

	var total float64
	for _, mw := range areaUnserved {
		total += mw
	}

	rec.UnservedMW = total
	rec.AreaUnservedMW = areaUnserved
	rec.LossEvent = total > cfg.ThresholdMW
	return rec, nil
}

// markReachable runs a breadth-first traversal from the slack bus over
// in-service branches, setting reachFlag[busPos[id]]=1 for every bus it
// reaches. Duplicated from network.Network.Connected's own BFS (that
// method only returns a bool, not the visited set this caller needs) —
// the same small adjacency-list-then-BFS shape, not a new algorithm.
func markReachable(n *network.Network, busPos map[int]int, reachFlag []int) {
	slackID, ok := n.SlackBusID()
	if !ok {
		return
	}

	adj := make(map[int][]int, len(busPos))
	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		adj[b.From] = append(adj[b.From], b.To)
		adj[b.To] = append(adj[b.To], b.From)
	}

	visited := map[int]bool{slackID: true}
	queue := []int{slackID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if pos, ok := busPos[cur]; ok {
			reachFlag[pos] = 1
		}
		for _, nb := range adj[cur] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
}
