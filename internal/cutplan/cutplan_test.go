package cutplan

import (
	"testing"

	"github.com/piwi3910/PatchWall/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filler(w, h int) model.Panel {
	return model.NewFiller(model.Rect{Width: w, Height: h}, 0)
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Board.Price = 30
	return s
}

func assertSheetValid(t *testing.T, sheet Sheet) {
	t.Helper()
	board := model.Rect{Width: sheet.Board.Width, Height: sheet.Board.Height}
	for i, a := range sheet.Cuts {
		assert.True(t, board.Contains(a.Rect()), "cut %s leaves the board", a.Piece.Label)
		for _, b := range sheet.Cuts[i+1:] {
			assert.False(t, model.Overlaps(a.Rect(), b.Rect()), "cuts %s and %s overlap", a.Piece.Label, b.Piece.Label)
		}
	}
}

func TestBuild_SingleFiller(t *testing.T) {
	f := filler(1000, 500)
	plan, err := Build([]model.Panel{f}, testSettings())
	require.NoError(t, err)

	require.Len(t, plan.Sheets, 1)
	require.Len(t, plan.Sheets[0].Cuts, 1)
	cut := plan.Sheets[0].Cuts[0]
	assert.Equal(t, f.ID, cut.Piece.FillerID)
	assert.Equal(t, "F1", cut.Piece.Label)
	assert.Equal(t, 0, cut.X)
	assert.Equal(t, 0, cut.Y)
	assert.Empty(t, plan.Unplaced)
	assert.NotEmpty(t, plan.Sheets[0].ID)
}

func TestBuild_OneBoardPerLargeFiller(t *testing.T) {
	fillers := []model.Panel{filler(2000, 1000), filler(2000, 1000), filler(2000, 1000)}
	plan, err := Build(fillers, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 3, plan.BoardCount())
	assert.InDelta(t, 90.0, plan.TotalCost(), 1e-9)
	assert.Empty(t, plan.Unplaced)
	for _, s := range plan.Sheets {
		assertSheetValid(t, s)
	}
}

func TestBuild_NestsSmallFillersTogether(t *testing.T) {
	var fillers []model.Panel
	for i := 0; i < 8; i++ {
		fillers = append(fillers, filler(600, 500))
	}
	plan, err := Build(fillers, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, plan.BoardCount())
	assert.Len(t, plan.Sheets[0].Cuts, 8)
	assertSheetValid(t, plan.Sheets[0])
	assert.Greater(t, plan.Efficiency(), 70.0)
}

func TestBuild_RotatesToFit(t *testing.T) {
	plan, err := Build([]model.Panel{filler(1000, 2400)}, testSettings())
	require.NoError(t, err)
	require.Len(t, plan.Sheets, 1)
	require.Len(t, plan.Sheets[0].Cuts, 1)
	assert.True(t, plan.Sheets[0].Cuts[0].Rotated)
	assertSheetValid(t, plan.Sheets[0])
}

func TestBuild_TilesOversizedFiller(t *testing.T) {
	f := filler(3000, 1000)
	plan, err := Build([]model.Panel{f}, testSettings())
	require.NoError(t, err)
	assert.Empty(t, plan.Unplaced)

	var area int
	labels := map[string]bool{}
	for _, s := range plan.Sheets {
		assertSheetValid(t, s)
		for _, c := range s.Cuts {
			assert.Equal(t, f.ID, c.Piece.FillerID)
			area += c.Piece.Area()
			labels[c.Piece.Label] = true
		}
	}
	assert.Equal(t, f.Area(), area)
	assert.True(t, labels["F1.1"] && labels["F1.2"], "expected two tiles, got %v", labels)
}

func TestBuild_SkipsNonFillers(t *testing.T) {
	window := model.NewPanel(model.KindSourcedUsed, 1000, 1000, 10, model.Provenance{})
	plan, err := Build([]model.Panel{window}, testSettings())
	require.NoError(t, err)
	assert.Empty(t, plan.Sheets)
	assert.Zero(t, plan.Efficiency())
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	s.Board.Width = 0
	assert.True(t, model.IsConfigurationError(s.Validate()))

	s = DefaultSettings()
	s.Kerf = -1
	assert.True(t, model.IsConfigurationError(s.Validate()))

	_, err := Build(nil, s)
	assert.Error(t, err)
}

func TestPieces_TileSizes(t *testing.T) {
	s := DefaultSettings()
	pieces := Pieces([]model.Panel{filler(6000, 3000)}, s)

	var area int
	for _, p := range pieces {
		assert.LessOrEqual(t, p.Width, s.Board.Width-s.Kerf)
		assert.LessOrEqual(t, p.Height, s.Board.Height-s.Kerf)
		area += p.Area()
	}
	assert.Equal(t, 6000*3000, area)
}

func TestDetectOffcuts(t *testing.T) {
	sheet := Sheet{
		Board: Board{Width: 2500, Height: 1250},
		Cuts:  []Cut{{Piece: Piece{Width: 1000, Height: 1246}}},
	}
	offcuts := DetectOffcuts(sheet, 4, 300)
	require.Len(t, offcuts, 1)
	assert.Equal(t, model.Rect{X: 1004, Y: 0, Width: 1496, Height: 1250}, offcuts[0])

	empty := DetectOffcuts(Sheet{Board: Board{Width: 2500, Height: 1250}}, 4, 300)
	require.Len(t, empty, 1)
	assert.Equal(t, 2500*1250, empty[0].Area())

	sheet.Cuts[0].Piece.Width = 2300
	assert.Empty(t, DetectOffcuts(sheet, 4, 300), "a 196 mm strip is waste")
}
