package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/piwi3910/PatchWall/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func footprints(panels []model.Panel) []model.Rect {
	rects := make([]model.Rect, len(panels))
	for i, p := range panels {
		rects[i] = p.Rect()
	}
	return rects
}

func window(w, h int) model.Panel {
	return model.NewPanel(model.KindSourcedUsed, w, h, 50, model.Provenance{Label: "test"})
}

// randomPanels returns n panels with arbitrary (not step aligned) sizes.
func randomPanels(rng *rand.Rand, n int) []model.Panel {
	panels := make([]model.Panel, n)
	for i := range panels {
		panels[i] = window(300+rng.Intn(1700), 300+rng.Intn(1700))
	}
	return panels
}

func assertValidLayout(t *testing.T, wall model.Wall, input []model.Panel, result model.PlacementResult) {
	t.Helper()
	bounds := wall.Bounds()
	for i, a := range result.Placed {
		require.True(t, a.Placed(), "placed panel %s has no position", a.ID)
		assert.True(t, bounds.Contains(a.Rect()), "panel %s at %s leaves the %s wall", a.ID, a.Rect(), wall)
		for _, b := range result.Placed[i+1:] {
			assert.False(t, model.Overlaps(a.Rect(), b.Rect()), "panels %s and %s overlap", a.Rect(), b.Rect())
		}
	}
	for _, o := range result.Omitted {
		assert.False(t, o.Placed(), "omitted panel %s carries a position", o.ID)
	}
	assert.Equal(t, len(input), len(result.Placed)+len(result.Omitted))
}

func TestPack_AllStrategiesProduceValidLayouts(t *testing.T) {
	walls := []model.Wall{
		{Width: 4000, Height: 3000},
		{Width: 2500, Height: 1000},
		{Width: 8000, Height: 2600},
		{Width: 12000, Height: 12000},
	}
	for _, strategy := range model.Strategies() {
		for i, wall := range walls {
			t.Run(fmt.Sprintf("%s/%d", strategy, i), func(t *testing.T) {
				rng := rand.New(rand.NewSource(int64(i + 1)))
				panels := randomPanels(rng, 25)
				result, err := Pack(wall, panels, strategy, rng)
				require.NoError(t, err)
				assert.Equal(t, strategy, result.Strategy)
				assertValidLayout(t, wall, panels, result)
			})
		}
	}
}

func TestPack_DoesNotModifyInput(t *testing.T) {
	panels := []model.Panel{window(1000, 1000), window(500, 500)}
	_, err := Pack(model.Wall{Width: 2000, Height: 2000}, panels, model.StrategyMondrian, nil)
	require.NoError(t, err)
	for _, p := range panels {
		assert.False(t, p.Placed())
	}
}

func TestPack_ScenarioA_ForcedPanelCentered(t *testing.T) {
	wall := model.Wall{Width: 4000, Height: 3000}
	forced := model.NewUserStock(1000, 1200)

	result, err := Pack(wall, []model.Panel{forced}, model.StrategyCluster, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, forced.ID, result.Placed[0].ID)
	assert.Equal(t, model.Point{X: 1500, Y: 900}, *result.Placed[0].Position)

	fillers, err := ComputeGaps(wall, result.Placed, result.Step, 0)
	require.NoError(t, err)
	area := result.PlacedArea()
	for _, f := range fillers {
		area += f.Area()
	}
	assert.Equal(t, 12_000_000, area)
}

func TestPack_ScenarioB_PanelLargerThanWall(t *testing.T) {
	wall := model.Wall{Width: 1000, Height: 1000}
	big := window(1200, 1200)

	for _, strategy := range model.Strategies() {
		result, err := Pack(wall, []model.Panel{big}, strategy, rand.New(rand.NewSource(1)))
		require.NoError(t, err, strategy)
		assert.Empty(t, result.Placed, strategy)
		require.Len(t, result.Omitted, 1, strategy)
		assert.Equal(t, big.ID, result.Omitted[0].ID)

		fillers, err := ComputeGaps(wall, result.Placed, result.Step, 0)
		require.NoError(t, err)
		require.Len(t, fillers, 1)
		assert.Equal(t, model.Rect{Width: 1000, Height: 1000}, fillers[0].Rect())
	}
}

func TestPack_ScenarioC_ShelfSideBySide(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 1000}
	panels := []model.Panel{window(1000, 1000), window(1000, 1000)}

	result, err := Pack(wall, panels, model.StrategyShelf, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 2)
	assert.Equal(t, model.Point{X: 0, Y: 0}, *result.Placed[0].Position)
	assert.Equal(t, model.Point{X: 1000, Y: 0}, *result.Placed[1].Position)

	fillers, err := ComputeGaps(wall, result.Placed, result.Step, 0)
	require.NoError(t, err)
	assert.Empty(t, fillers)
}

func TestPack_ScenarioD_StepCoarsening(t *testing.T) {
	cases := []struct {
		width   int
		step    int
		secondX int
	}{
		{6000, 50, 950},
		{6001, 100, 1000},
		{12000, 100, 1000},
	}
	for _, c := range cases {
		wall := model.Wall{Width: c.width, Height: 2000}
		panels := []model.Panel{window(950, 1000), window(950, 1000)}

		result, err := Pack(wall, panels, model.StrategyMondrian, nil)
		require.NoError(t, err)
		assert.Equal(t, c.step, result.Step, "wall width %d", c.width)
		require.Len(t, result.Placed, 2)
		assert.Equal(t, c.secondX, result.Placed[1].Position.X, "wall width %d", c.width)
	}
}

func TestPack_ShelfStartsNewRow(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 1500}
	low := window(1000, 500)
	tall := window(1000, 1000)
	wide := window(1500, 500)

	result, err := Pack(wall, []model.Panel{low, tall, wide}, model.StrategyShelf, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 3)

	assert.Equal(t, tall.ID, result.Placed[0].ID)
	assert.Equal(t, model.Point{X: 0, Y: 0}, *result.Placed[0].Position)
	assert.Equal(t, model.Point{X: 1000, Y: 0}, *result.Placed[1].Position)
	assert.Equal(t, model.Point{X: 0, Y: 1000}, *result.Placed[2].Position)
}

func TestPack_ShelfDropsPanelsThatDoNotFit(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 1000}
	tooWide := window(2500, 400)
	tooTall := window(400, 1200)
	fits := window(1000, 1000)

	result, err := Pack(wall, []model.Panel{tooWide, tooTall, fits}, model.StrategyShelf, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, fits.ID, result.Placed[0].ID)
	assert.Len(t, result.Omitted, 2)
}

func TestPack_ColumnFillsTopToBottom(t *testing.T) {
	wall := model.Wall{Width: 1500, Height: 2000}
	square := window(1000, 1000)
	short := window(500, 1000)
	long := window(500, 1500)

	result, err := Pack(wall, []model.Panel{short, long, square}, model.StrategyColumn, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 3)

	assert.Equal(t, square.ID, result.Placed[0].ID)
	assert.Equal(t, model.Point{X: 0, Y: 0}, *result.Placed[0].Position)
	assert.Equal(t, short.ID, result.Placed[1].ID)
	assert.Equal(t, model.Point{X: 0, Y: 1000}, *result.Placed[1].Position)
	assert.Equal(t, long.ID, result.Placed[2].ID)
	assert.Equal(t, model.Point{X: 1000, Y: 0}, *result.Placed[2].Position)
}

func TestPack_MondrianFirstFitRowMajor(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 2000}
	big := window(1500, 1500)
	small := window(500, 500)

	result, err := Pack(wall, []model.Panel{small, big}, model.StrategyMondrian, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 2)
	assert.Equal(t, big.ID, result.Placed[0].ID)
	assert.Equal(t, model.Point{X: 0, Y: 0}, *result.Placed[0].Position)
	assert.Equal(t, model.Point{X: 1500, Y: 0}, *result.Placed[1].Position)
}

func TestPack_ForcedPanelAlwaysPlaced(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 2000}
	forced := model.NewUserStock(1500, 1500)

	for _, strategy := range model.Strategies() {
		panels := []model.Panel{window(2000, 1000), window(1000, 2000), window(1200, 1200), forced}
		result, err := Pack(wall, panels, strategy, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		assert.NotZero(t, result.IndexOf(forced.ID), "%s dropped the forced panel", strategy)
		assert.Empty(t, result.ForcedOmitted(), strategy)
	}
}

func TestPack_ShelfForcedBeforeTaller(t *testing.T) {
	wall := model.Wall{Width: 1000, Height: 1000}
	forced := model.NewUserStock(500, 500)
	tall := window(1000, 1000)

	result, err := Pack(wall, []model.Panel{tall, forced}, model.StrategyShelf, nil)
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, forced.ID, result.Placed[0].ID)
}

func TestPack_CompetingForcedPanelsReported(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 2000}
	first := model.NewUserStock(2000, 2000)
	second := model.NewUserStock(2000, 2000)

	result, err := Pack(wall, []model.Panel{first, second}, model.StrategyCluster, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, first.ID, result.Placed[0].ID, "forced panels keep their order")
	require.Len(t, result.ForcedOmitted(), 1)
	assert.Equal(t, second.ID, result.ForcedOmitted()[0].ID)
}

func TestPack_ConfigurationErrors(t *testing.T) {
	wall := model.Wall{Width: 2000, Height: 2000}

	_, err := Pack(wall, []model.Panel{model.NewUserStock(3000, 1000)}, model.StrategyCluster, nil)
	assert.True(t, model.IsConfigurationError(err), "forced panel wider than the wall: %v", err)

	_, err = Pack(wall, []model.Panel{window(0, 1000)}, model.StrategyShelf, nil)
	assert.True(t, model.IsConfigurationError(err), "zero width: %v", err)

	_, err = Pack(model.Wall{Width: 500, Height: 2000}, nil, model.StrategyShelf, nil)
	assert.True(t, model.IsConfigurationError(err), "narrow wall: %v", err)

	_, err = Pack(wall, nil, model.Strategy("spiral"), nil)
	assert.True(t, model.IsConfigurationError(err), "unknown strategy: %v", err)
}

func TestPack_DeterministicStrategies(t *testing.T) {
	wall := model.Wall{Width: 5000, Height: 3000}
	panels := randomPanels(rand.New(rand.NewSource(11)), 20)

	for _, strategy := range []model.Strategy{model.StrategyShelf, model.StrategyColumn, model.StrategyMondrian} {
		first, err := Pack(wall, panels, strategy, nil)
		require.NoError(t, err)
		second, err := Pack(wall, panels, strategy, nil)
		require.NoError(t, err)
		assert.Equal(t, footprints(first.Placed), footprints(second.Placed), strategy)
	}
}

func TestPack_ClusterReproducibleWithSeed(t *testing.T) {
	wall := model.Wall{Width: 5000, Height: 3000}
	panels := randomPanels(rand.New(rand.NewSource(5)), 15)

	first, err := Pack(wall, panels, model.StrategyCluster, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	second, err := Pack(wall, panels, model.StrategyCluster, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.Equal(t, footprints(first.Placed), footprints(second.Placed))
}

func TestPack_ClusterVariesBetweenSeeds(t *testing.T) {
	wall := model.Wall{Width: 5000, Height: 3000}
	panels := randomPanels(rand.New(rand.NewSource(5)), 15)

	layouts := map[string]bool{}
	for seed := int64(1); seed <= 20; seed++ {
		result, err := Pack(wall, panels, model.StrategyCluster, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		layouts[fmt.Sprint(footprints(result.Placed))] = true
	}
	assert.Greater(t, len(layouts), 1, "shuffling should produce different layouts")
}

func TestPack_ClusterIsCentered(t *testing.T) {
	wall := model.Wall{Width: 3000, Height: 3000}
	panels := []model.Panel{window(1000, 1000), window(1000, 1000)}

	result, err := Pack(wall, panels, model.StrategyCluster, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, result.Placed, 2)

	rects := footprints(result.Placed)
	minX, minY, maxX, maxY := wall.Width, wall.Height, 0, 0
	for _, r := range rects {
		minX, minY = min(minX, r.X), min(minY, r.Y)
		maxX, maxY = max(maxX, r.Right()), max(maxY, r.Bottom())
	}
	assert.Equal(t, wall.Width-maxX, minX, "horizontal margins should match")
	assert.Equal(t, 1000, minY)
	assert.Equal(t, 2000, maxY)
}

func TestPack_DuplicateIDsRejected(t *testing.T) {
	wall := model.Wall{Width: 1000, Height: 1000}
	a := window(600, 600)
	b := window(600, 600)
	b.ID = a.ID

	for _, strategy := range model.Strategies() {
		_, err := Pack(wall, []model.Panel{a, b}, strategy, rand.New(rand.NewSource(1)))
		require.Error(t, err, strategy)
		assert.True(t, model.IsConfigurationError(err), strategy)
		assert.Contains(t, err.Error(), "duplicate panel id")
	}

	c := window(600, 600)
	result, err := Pack(wall, []model.Panel{a, c}, model.StrategyShelf, nil)
	require.NoError(t, err)
	assertValidLayout(t, wall, []model.Panel{a, c}, result)
	assert.Len(t, result.Omitted, 1)
}
