// Package export renders a forest's analysis history as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const sheet = "Analyses"

// History lists a forest's analyses, newest first, enforcing ownership.
type History interface {
	History(ctx context.Context, forestID uuid.UUID) ([]*entity.Analysis, error)
}

// Service is a tiny façade over the analysis history that produces XLSX bytes.
type Service struct {
	history History
	logger  *zap.Logger
}

func NewService(history History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{history: history, logger: logger}
}

var headers = []string{
	"Created At",
	"Overall Risk",
	"Severity",
	"Timeline",
	"Budget",
	"Manpower",
	"Steps",
}

// ExportAnalysesXLSX returns one row per analysis, newest first.
func (s *Service) ExportAnalysesXLSX(ctx context.Context, forestID uuid.UUID) ([]byte, error) {
	start := time.Now()
	list, err := s.history.History(ctx, forestID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, a := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		rec := a.Recommendations
		row := []any{
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.RiskZones.Overall,
			string(rec.Severity),
			rec.Timeline,
			rec.Resources.Budget,
			rec.Resources.Manpower,
			truncate(strings.Join(rec.Steps, "; "), 500),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // created
	_ = f.SetColWidth(sheet, "B", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 14)
	_ = f.SetColWidth(sheet, "E", "F", 12)
	_ = f.SetColWidth(sheet, "G", "G", 80) // steps

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		zap.String("forest_id", forestID.String()),
		zap.Int("rows", len(list)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
