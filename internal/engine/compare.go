package engine

import (
	"fmt"
	"math/rand"

	"github.com/piwi3910/PatchWall/internal/model"
)

// StrategyComparison holds the layout and computed statistics for one strategy.
type StrategyComparison struct {
	Strategy     model.Strategy
	Result       model.PlacementResult
	Fillers      []model.Panel
	PlacedCount  int
	OmittedCount int
	FillRatio    float64
	TotalCost    float64
	FillerCount  int
	FillerArea   int
}

// CompareStrategies runs every strategy on the same wall and panels and returns
// the results in model.Strategies order. All randomised strategies share seed,
// so a comparison can be reproduced exactly.
func CompareStrategies(wall model.Wall, panels []model.Panel, seed int64, unitRate float64) ([]StrategyComparison, error) {
	seed = SeedOrNow(seed)
	strategies := model.Strategies()
	results := make([]StrategyComparison, 0, len(strategies))

	for _, strategy := range strategies {
		result, err := Pack(wall, panels, strategy, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, fmt.Errorf("packing with %s: %w", strategy, err)
		}
		result.Seed = seed

		fillers, err := ComputeGaps(wall, result.Placed, result.Step, unitRate)
		if err != nil {
			return nil, fmt.Errorf("computing gaps for %s: %w", strategy, err)
		}

		fillerArea := 0
		for _, f := range fillers {
			fillerArea += f.Area()
		}

		results = append(results, StrategyComparison{
			Strategy:     strategy,
			Result:       result,
			Fillers:      fillers,
			PlacedCount:  len(result.Placed),
			OmittedCount: len(result.Omitted),
			FillRatio:    float64(result.PlacedArea()) / float64(wall.Area()),
			TotalCost:    result.TotalCost(),
			FillerCount:  len(fillers),
			FillerArea:   fillerArea,
		})
	}

	return results, nil
}

// BestByFill returns the comparison with the highest fill ratio. Ties go to
// the cheaper layout, then to the earlier strategy.
func BestByFill(results []StrategyComparison) (StrategyComparison, bool) {
	if len(results) == 0 {
		return StrategyComparison{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.FillRatio > best.FillRatio ||
			(r.FillRatio == best.FillRatio && r.TotalCost < best.TotalCost) {
			best = r
		}
	}
	return best, true
}
