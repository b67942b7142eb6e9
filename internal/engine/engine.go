package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/piwi3910/PatchWall/internal/model"
)

// SeedOrNow returns seed, or a time based seed when seed is 0.
func SeedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Pack places panels on the wall with the given strategy. Panels are expected
// to be pre-filtered to the visible ones. Panels that do not fit are returned
// in Omitted rather than as an error. rng is only consulted by the cluster
// strategy; a nil rng there is replaced with a time seeded one.
//
// The input slice is never modified.
func Pack(wall model.Wall, panels []model.Panel, strategy model.Strategy, rng *rand.Rand) (model.PlacementResult, error) {
	if err := validateInput(wall, panels); err != nil {
		return model.PlacementResult{}, err
	}

	input := make([]model.Panel, len(panels))
	for i, p := range panels {
		input[i] = p.Unplaced()
	}

	step := wall.Step()
	var placed []model.Panel
	switch strategy {
	case model.StrategyShelf:
		placed = packShelf(wall, input)
	case model.StrategyColumn:
		placed = packColumn(wall, input)
	case model.StrategyMondrian:
		placed = scanPlace(wall, orderForced(input, byArea), step)
	case model.StrategyCluster, "":
		strategy = model.StrategyCluster
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		placed = centerCluster(wall, scanPlace(wall, clusterOrder(input, rng), step))
	default:
		return model.PlacementResult{}, model.NewConfigurationError("strategy", string(strategy), "unknown layout strategy")
	}

	return model.PlacementResult{
		Strategy: strategy,
		Step:     step,
		Placed:   placed,
		Omitted:  model.OmittedFrom(input, placed),
	}, nil
}

// validateInput rejects geometry that can never produce a valid layout.
func validateInput(wall model.Wall, panels []model.Panel) error {
	if err := wall.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(panels))
	for _, p := range panels {
		if seen[p.ID] {
			return model.NewConfigurationError("panel "+p.ID, p.Dimensions(), "duplicate panel id")
		}
		seen[p.ID] = true
		if p.Width <= 0 || p.Height <= 0 {
			return model.NewConfigurationError("panel "+p.ID, p.Dimensions(), "width and height must be positive")
		}
		if p.Forced && (p.Width > wall.Width || p.Height > wall.Height) {
			return model.NewConfigurationError("panel "+p.ID, p.Dimensions(),
				fmt.Sprintf("forced panel does not fit the %s wall", wall))
		}
	}
	return nil
}

func byHeight(p model.Panel) int { return p.Height }
func byWidth(p model.Panel) int  { return p.Width }
func byArea(p model.Panel) int   { return p.Area() }

// orderForced sorts forced panels ahead of normal ones, each group by key descending.
// Ties keep their input order.
func orderForced(panels []model.Panel, key func(model.Panel) int) []model.Panel {
	out := append([]model.Panel(nil), panels...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Forced != out[j].Forced {
			return out[i].Forced
		}
		return key(out[i]) > key(out[j])
	})
	return out
}

// clusterOrder keeps forced panels first in their given order, then shuffles
// the normal panels and sorts them by area scaled with a random factor in
// [0.5, 1.5). Larger panels tend to go first but each seed gives a different order.
func clusterOrder(panels []model.Panel, rng *rand.Rand) []model.Panel {
	var forced []model.Panel
	type keyed struct {
		panel model.Panel
		key   float64
	}
	var normal []keyed

	for _, p := range panels {
		if p.Forced {
			forced = append(forced, p)
		} else {
			normal = append(normal, keyed{panel: p})
		}
	}

	rng.Shuffle(len(normal), func(i, j int) {
		normal[i], normal[j] = normal[j], normal[i]
	})
	for i := range normal {
		normal[i].key = float64(normal[i].panel.Area()) * (0.5 + rng.Float64())
	}
	sort.SliceStable(normal, func(i, j int) bool {
		return normal[i].key > normal[j].key
	})

	out := make([]model.Panel, 0, len(panels))
	out = append(out, forced...)
	for _, k := range normal {
		out = append(out, k.panel)
	}
	return out
}
