package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/PatchWall/internal/model"
)

type recordedRun struct {
	strategy string
	fill     float64
	placed   int
	err      error
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) ObserveLayout(strategy string, _ time.Duration, fill float64, placed int, err error) {
	f.runs = append(f.runs, recordedRun{strategy: strategy, fill: fill, placed: placed, err: err})
}

func window(w, h int, price float64) model.Panel {
	return model.NewPanel(model.KindSourcedUsed, w, h, price, model.Provenance{Label: "test"})
}

func TestSessionRun_Metrics(t *testing.T) {
	inv := model.NewInventory()
	inv.ReplaceDiscovered([]model.Panel{window(1000, 1000, 40), window(1000, 1000, 60)})
	settings := model.LayoutSettings{Strategy: model.StrategyShelf, FillerRate: 10}
	s := NewSession(inv, settings, nil)

	res, err := s.Run(model.Wall{Width: 2000, Height: 1500}, "")
	require.NoError(t, err)

	assert.Equal(t, model.StrategyShelf, res.Strategy)
	assert.Equal(t, 50, res.Step)
	assert.Len(t, res.Placed, 2)
	assert.Equal(t, 100.0, res.Metrics.TotalCost)
	assert.Equal(t, 3_000_000, res.Metrics.WallArea)
	assert.Equal(t, 2_000_000, res.Metrics.PlacedArea)
	assert.Equal(t, 1_000_000, res.Metrics.FillerArea)
	assert.InDelta(t, 2.0/3.0, res.Metrics.FillRatio, 1e-9)
	assert.InDelta(t, 10.0, res.Metrics.FillerCost, 1e-9)
	assert.InDelta(t, 3.0, res.Metrics.WallAreaM2(), 1e-9)
	require.Len(t, res.Fillers, 1)
	assert.Equal(t, model.Rect{X: 0, Y: 1000, Width: 2000, Height: 500}, res.Fillers[0].Rect())
	assert.Equal(t, 3, res.Procurement.TotalCount)
}

func TestSessionRun_HiddenPanelsExcluded(t *testing.T) {
	inv := model.NewInventory()
	hidden := window(1000, 1000, 10)
	shown := window(1000, 1000, 10)
	inv.ReplaceDiscovered([]model.Panel{hidden, shown})
	require.NoError(t, inv.SetVisible(hidden.ID, false))

	s := NewSession(inv, model.LayoutSettings{Strategy: model.StrategyMondrian}, nil)
	res, err := s.Run(model.Wall{Width: 3000, Height: 3000}, "")
	require.NoError(t, err)

	assert.Len(t, res.Placed, 1)
	assert.Equal(t, StatusHidden, res.StatusOf(hidden.ID))
	assert.Equal(t, StatusPlaced, res.StatusOf(shown.ID))
	assert.Equal(t, 2, inv.Len(), "hidden panels stay in the inventory")
}

func TestSessionRun_DoesNotMutateInventory(t *testing.T) {
	inv := model.NewInventory()
	inv.ReplaceDiscovered([]model.Panel{window(1000, 1000, 10)})
	s := NewSession(inv, model.DefaultSettings(), nil)

	_, err := s.Run(model.Wall{Width: 3000, Height: 3000}, model.StrategyCluster)
	require.NoError(t, err)
	assert.False(t, inv.Discovered[0].Placed())
	assert.True(t, inv.Discovered[0].Visible)
}

func TestSessionRun_StatusAndRows(t *testing.T) {
	inv := model.NewInventory()
	own := model.NewUserStock(1000, 1000)
	inv.AddUserStock(own)
	fits := window(1000, 1000, 25)
	tooBig := window(3000, 3000, 99)
	inv.ReplaceDiscovered([]model.Panel{fits, tooBig})

	s := NewSession(inv, model.LayoutSettings{Strategy: model.StrategyShelf}, nil)
	res, err := s.Run(model.Wall{Width: 2000, Height: 2000}, "")
	require.NoError(t, err)

	assert.Equal(t, StatusPlaced, res.StatusOf(own.ID))
	assert.Equal(t, StatusOmitted, res.StatusOf(tooBig.ID))
	assert.Equal(t, StatusUnknown, res.StatusOf("nope"))
	assert.Equal(t, "doesn't fit", StatusOmitted.String())

	rows := res.Rows()
	require.Len(t, rows, 3+len(res.Fillers))
	assert.Equal(t, own.ID, rows[0].Panel.ID, "user stock is listed first")
	assert.Equal(t, "P1", rows[0].Label)
	assert.True(t, rows[0].Panel.Placed())
	assert.Equal(t, "P2", rows[1].Label)
	assert.Equal(t, "", rows[2].Label)
	for _, row := range rows[3:] {
		assert.Equal(t, StatusFiller, row.Status)
		assert.Equal(t, "Gap", row.Label)
	}
}

func TestSessionRunSeeded_Reproducible(t *testing.T) {
	inv := model.NewInventory()
	var panels []model.Panel
	for _, size := range [][2]int{{1200, 1400}, {800, 600}, {2000, 2100}, {900, 900}, {1500, 700}} {
		panels = append(panels, window(size[0], size[1], 10))
	}
	inv.ReplaceDiscovered(panels)
	s := NewSession(inv, model.DefaultSettings(), nil)
	wall := model.Wall{Width: 5000, Height: 3000}

	first, err := s.RunSeeded(wall, model.StrategyCluster, 77)
	require.NoError(t, err)
	second, err := s.RunSeeded(wall, model.StrategyCluster, 77)
	require.NoError(t, err)

	assert.Equal(t, int64(77), first.Seed)
	require.Len(t, second.Placed, len(first.Placed))
	for i := range first.Placed {
		assert.Equal(t, first.Placed[i].Rect(), second.Placed[i].Rect())
	}

	fresh, err := NewSession(inv, model.LayoutSettings{Strategy: model.StrategyCluster}, nil).Run(wall, "")
	require.NoError(t, err)
	assert.NotZero(t, fresh.Seed, "a fresh seed is drawn and recorded")
}

func TestSessionRun_ConfigurationError(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSession(nil, model.DefaultSettings(), nil, WithRecorder(rec))

	_, err := s.Run(model.Wall{Width: 200, Height: 200}, "")
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))

	require.Len(t, rec.runs, 1)
	assert.Error(t, rec.runs[0].err)
}

func TestSessionRun_RecordsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &fakeRecorder{}

	inv := model.NewInventory()
	inv.AddUserStock(model.NewUserStock(2000, 2000))
	inv.AddUserStock(model.NewUserStock(2000, 2000))
	s := NewSession(inv, model.DefaultSettings(), zap.New(core), WithRecorder(rec))

	res, err := s.Run(model.Wall{Width: 2000, Height: 2000}, model.StrategyCluster)
	require.NoError(t, err)
	require.Len(t, res.ForcedOmitted(), 1)

	assert.Equal(t, 1, logs.FilterMessage("forced panel could not be placed").Len())
	assert.Equal(t, 1, logs.FilterMessage("layout computed").Len())

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "cluster", rec.runs[0].strategy)
	assert.Equal(t, 1, rec.runs[0].placed)
	assert.InDelta(t, 1.0, rec.runs[0].fill, 1e-9)
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{StatusPlaced, StatusOmitted, StatusHidden, StatusFiller} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got Status
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var s Status = StatusPlaced
	require.NoError(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, StatusUnknown, s)
}
