package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/document"
)

const (
	// DefaultMaxPages bounds how much of a PDF is scanned; later pages are ignored.
	DefaultMaxPages = 2

	previewColumns = 20
	previewRows    = 10
)

type Config struct {
	MaxPages int // PDF pages to scan, default DefaultMaxPages
}

// Result is the output of one extraction.
type Result struct {
	Format   constants.Format
	Fields   Fields
	Preview  map[string]any
	GPS      *document.GPS // EXIF position, photographs only
	Duration time.Duration
}

// Extractor turns raw upload bytes into Fields using a format-specific strategy.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract picks a strategy based on file extension.
// Unreadable input is reported as an input-rejected error with a caller-facing message.
func (e *Extractor) Extract(ctx context.Context, ext string, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	ext = constants.NormalizeExt(ext)
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("extract.start", zap.String("ext", ext), zap.String("format", string(format)), zap.Int("bytes", len(data)))

	var (
		res Result
		err error
	)
	switch format {
	case constants.TABULAR:
		res, err = e.extractTable(ext, data)
	case constants.PDF:
		res, err = e.extractPDF(data)
	case constants.IMAGE:
		res, err = e.extractImage(data)
	default:
		e.logger.Warn("extract.unsupported", zap.String("ext", ext))
		return Result{}, common.InputRejected("Unsupported file type", common.ErrUnsupported)
	}
	if err != nil {
		e.logger.Warn("extract.failed", zap.String("ext", ext), zap.Error(err))
		return Result{Format: format}, err
	}
	res.Format = format
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		zap.String("format", string(format)),
		zap.Int("fields", len(res.Fields)),
		zap.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (e *Extractor) extractTable(ext string, data []byte) (Result, error) {
	t, err := document.ReadTable(ext, data)
	if err != nil {
		return Result{}, common.InputRejected(fmt.Sprintf("Failed to parse file: %v", err), err)
	}
	cols := t.Columns
	if len(cols) > previewColumns {
		cols = cols[:previewColumns]
	}
	return Result{
		Fields: FromTable(t),
		Preview: map[string]any{
			"columns": cols,
			"rows":    t.Records(previewRows),
		},
	}, nil
}

func (e *Extractor) extractPDF(data []byte) (Result, error) {
	pages, err := document.PDFPages(data, e.cfg.MaxPages)
	if err != nil {
		return Result{}, common.InputRejected(fmt.Sprintf("Failed to read PDF: %v", err), err)
	}
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		e.logger.Info("extract.pdf.no_text", zap.Int("pages", len(pages)))
	}
	return Result{
		Fields:  FromText(text),
		Preview: map[string]any{"pages": len(pages)},
	}, nil
}

func (e *Extractor) extractImage(data []byte) (Result, error) {
	info, err := document.ReadImage(data)
	if err != nil {
		return Result{}, common.InputRejected(fmt.Sprintf("Failed to process image: %v", err), err)
	}
	return Result{
		Fields: FromImage(info),
		Preview: map[string]any{
			"format": info.Format,
			"size":   []int{info.Width, info.Height},
		},
		GPS: info.GPS,
	}, nil
}
