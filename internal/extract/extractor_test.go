package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/document/documenttest"
)

func newTestExtractor() *Extractor {
	return NewExtractor(Config{}, zap.NewNop())
}

func TestExtract_CSV(t *testing.T) {
	data := []byte("Trees,SoilPH,Activity\n12000,6.2,0.7\n")

	res, err := newTestExtractor().Extract(context.Background(), "csv", data)

	require.NoError(t, err)
	assert.Equal(t, constants.TABULAR, res.Format)
	tc, _ := res.Fields.Int(constants.FieldTreeCount)
	assert.Equal(t, int64(12000), tc)
	assert.Equal(t, []string{"Trees", "SoilPH", "Activity"}, res.Preview["columns"])
	rows, ok := res.Preview["rows"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.7", rows[0]["Activity"])
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Location", "Area", "Tree Count", "Soil Health", "Animal Activity", "SoilPH"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Bardia", 968.5, 640, 0.55, 0.7, 6.24}))
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "E2", "E2", percent))
	oneDecimal := "0.0"
	rounded, err := f.NewStyle(&excelize.Style{CustomNumFmt: &oneDecimal})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "F2", "F2", rounded))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := newTestExtractor().Extract(context.Background(), ".xlsx", buf.Bytes())

	require.NoError(t, err)
	loc, _ := res.Fields.Text(constants.FieldLocation)
	assert.Equal(t, "Bardia", loc)
	area, _ := res.Fields.Float(constants.FieldArea)
	assert.InDelta(t, 968.5, area, 1e-9)
	tc, _ := res.Fields.Int(constants.FieldTreeCount)
	assert.Equal(t, int64(640), tc)
	act, _ := res.Fields.Float(constants.FieldAnimalActivity)
	assert.InDelta(t, 0.7, act, 1e-9)
	ph, _ := res.Fields.Float(constants.FieldSoilPH)
	assert.InDelta(t, 6.24, ph, 1e-9)
}

func TestExtract_PDFLayouts(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(annapurnaReport), "\n")
	layouts := []struct {
		name   string
		layout documenttest.Layout
	}{
		{"line feed", documenttest.LineFeed},
		{"relative offset", documenttest.Offset},
		{"text matrix", documenttest.Matrix},
	}
	for _, tt := range layouts {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestExtractor().Extract(context.Background(), "pdf", documenttest.PDF(tt.layout, lines...))

			require.NoError(t, err)
			assert.Equal(t, constants.PDF, res.Format)
			assert.Equal(t, 1, res.Preview["pages"])
			loc, _ := res.Fields.Text(constants.FieldLocation)
			assert.Equal(t, "Annapurna Conservation Area", loc)
			coords, _ := res.Fields.Text(constants.FieldCoordinates)
			assert.Equal(t, "28.5983,83.931", coords)
			tc, _ := res.Fields.Int(constants.FieldTreeCount)
			assert.Equal(t, int64(12500), tc)
			act, _ := res.Fields.Float(constants.FieldAnimalActivity)
			assert.InDelta(t, 0.9, act, 1e-9)
			rich, _ := res.Fields.Int(constants.FieldSpeciesRichness)
			assert.Equal(t, int64(3), rich)
		})
	}
}

func TestExtract_MalformedSpreadsheet(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), "xlsx", []byte("not a zip"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Contains(t, common.PublicMessage(err), "Failed to parse file:")
}

func TestExtract_Image(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	res, err := newTestExtractor().Extract(context.Background(), "png", buf.Bytes())

	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Format)
	assert.Equal(t, "png", res.Preview["format"])
	assert.Equal(t, []int{4, 3}, res.Preview["size"])
	assert.Nil(t, res.GPS)
	assert.Empty(t, res.Fields)
}

func TestExtract_BadImage(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), "jpg", []byte("garbage"))

	require.Error(t, err)
	assert.Contains(t, common.PublicMessage(err), "Failed to process image")
}

func TestExtract_InvalidPDF(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), "pdf", []byte("%PDF-1.4 truncated"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), "docx", []byte("x"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupported))
	assert.Equal(t, "Unsupported file type", common.PublicMessage(err))
}
