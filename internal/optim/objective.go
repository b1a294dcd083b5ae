package optim

import (
	"context"

	"github.com/san-kum/dicebox/internal/metrics"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/sim"
)

// SettleObjective replays the same throws under each parameter assignment and
// scores the mean settle time. A throw that never settles costs the full
// run duration.
func SettleObjective(base scene.Params, throwSeeds []int64, cfg sim.Config) Objective {
	return func(ctx context.Context, values map[string]float64) (float64, error) {
		p := base
		for name, v := range values {
			if err := p.SetParam(name, v); err != nil {
				return 0, err
			}
		}
		if err := p.Validate(); err != nil {
			return 0, err
		}

		factory := func(idx int) (*physics.World, error) {
			return scene.Replay(p, throwSeeds[idx])
		}
		results, err := sim.NewEnsemble(factory, len(throwSeeds), metrics.Defaults).Run(ctx, cfg)
		if err != nil {
			return 0, err
		}

		return MeanSettle(results, cfg.Duration), nil
	}
}

// MeanSettle averages settle times, charging unsettled runs the penalty.
func MeanSettle(results []*sim.Result, penalty float64) float64 {
	if len(results) == 0 {
		return penalty
	}
	var sum float64
	for _, r := range results {
		if r.Settled {
			sum += r.SettleTime
		} else {
			sum += penalty
		}
	}
	return sum / float64(len(results))
}
