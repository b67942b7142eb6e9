package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PatchWall/internal/layout"
)

func TestExportDXF(t *testing.T) {
	res := buildTestResult(t)
	path := filepath.Join(t.TempDir(), "wall.dxf")

	require.NoError(t, ExportDXF(path, res))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	var lines, texts int
	for _, e := range drawing.Entities() {
		switch e.(type) {
		case *entity.Line:
			lines++
		case *entity.Text:
			texts++
		}
	}
	rects := 1 + len(res.Placed) + len(res.Fillers)
	assert.Equal(t, 4*rects, lines)
	assert.Equal(t, len(res.Placed)+len(res.Fillers), texts)
}

func TestExportDXF_Empty(t *testing.T) {
	assert.ErrorIs(t, ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), &layout.Result{}), ErrNothingToExport)
}

func TestDXFWriterFlip(t *testing.T) {
	w := dxfWriter{wallHeight: 2000}
	assert.Equal(t, 2000.0, w.flip(0))
	assert.Equal(t, 500.0, w.flip(1500))
}
