package sensitivity

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/powerflow"
	"golang.org/x/sync/errgroup"
)

// ScreenContingencies runs an N-1 thermal screening over n: for every
// in-service branch in turn, it estimates the post-contingency flow on
// every other branch via f_ℓ^post ≈ f_ℓ^pre + LODF[ℓ,m]·f_m^pre and
// reports any that would exceed the monitored branch's rating, per spec
// §4.6. Outages are screened in parallel across a fixed worker pool,
// mirroring reliability.Run's errgroup-backed pool. A violation estimated
// beyond Config.SeverityFactor times the rating is escalated to a full
// powerflow.SolveAC recheck on that one outage, since LODF is only an
// approximation (~5% error typical) — screening catches everything, the
// recheck confirms what matters.
func ScreenContingencies(n *network.Network, opts ...Option) (*Report, error) {
	log := gatlog.Component("sensitivity.contingency")
	start := time.Now()

	cfg := newConfig(opts...)

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}

	ptdf, err := BuildPTDF(n)
	if err != nil {
		return nil, err
	}
	lodf := BuildLODF(ptdf)

	preSol, err := powerflow.SolveDC(n)
	if err != nil {
		return nil, err
	}

	branches := inServiceBranches(n)
	nb := len(branches)

	workerCount := cfg.MaxWorkers
	if workerCount > nb {
		workerCount = nb
	}
	if workerCount < 1 {
		workerCount = 1
	}
	log.Debug().Int("branches", nb).Int("workers", workerCount).Msg("N-1 screening starting")

	results := make([][]Violation, nb)
	indices := make(chan int)
	g, ctx := errgroup.WithContext(context.Background())

	for w := 0; w < workerCount; w++ {
		g.Go(func() error {
			for idx := range indices {
				if cfg.Cancel.Cancelled() {
					return gaterrors.NewCancelled()
				}
				if cfg.Deadline.Expired() {
					return gaterrors.NewTimeout(0)
				}
				results[idx] = screenOneOutage(n, branches[idx], branches, lodf, preSol, cfg)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < nb; i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("N-1 screening aborted")
		return nil, err
	}

	report := &Report{}
	for _, vs := range results {
		report.Violations = append(report.Violations, vs...)
	}
	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.OutagedBranch != b.OutagedBranch {
			return a.OutagedBranch < b.OutagedBranch
		}
		return a.MonitoredBranch < b.MonitoredBranch
	})

	log.Info().
		Int("branches", nb).
		Int("violations", len(report.Violations)).
		Dur("elapsed", time.Since(start)).
		Msg("N-1 screening finished")
	return report, nil
}

// screenOneOutage estimates post-contingency flows on every branch other
// than the outaged one and escalates severe estimates to a full AC
// recheck on that single outage.
func screenOneOutage(
	n *network.Network,
	outaged *network.Branch,
	monitored []*network.Branch,
	lodf *LODF,
	preSol *powerflow.Solution,
	cfg Config,
) []Violation {
	var vs []Violation
	fPre := preSol.BranchPFlow[outaged.Name]

	for _, mb := range monitored {
		if mb.Name == outaged.Name || mb.RatingMVA <= 0 {
			continue
		}
		factor, ok := lodf.Factor(mb.Name, outaged.Name)
		if !ok {
			continue
		}
		fPost := preSol.BranchPFlow[mb.Name] + factor*fPre
		if math.Abs(fPost) <= mb.RatingMVA {
			continue
		}

		v := Violation{
			OutagedBranch:   outaged.Name,
			MonitoredBranch: mb.Name,
			EstimatedFlowMW: fPost,
			RatingMVA:       mb.RatingMVA,
		}
		if math.Abs(fPost) > cfg.SeverityFactor*mb.RatingMVA {
			v.Severe = true
			if acFlow, converged, acErr := acRecheck(n, outaged.Name, mb.Name); acErr == nil {
				v.ACRechecked = true
				v.ACFlowMW = acFlow
				v.ACConverged = converged
			}
		}
		vs = append(vs, v)
	}
	return vs
}

// acRecheck clones n with outagedBranch tripped and solves full AC,
// returning the from-end flow on monitoredBranch.
func acRecheck(n *network.Network, outagedBranch, monitoredBranch string) (flow float64, converged bool, err error) {
	clone, err := n.ApplyScenario(network.Scenario{OutagedBranches: []string{outagedBranch}})
	if err != nil {
		return 0, false, err
	}
	sol, err := powerflow.SolveAC(clone)
	if err != nil {
		return 0, false, err
	}
	return sol.BranchPFlow[monitoredBranch], sol.Converged, nil
}
