// Package analysis scores forest measurement snapshots and keeps the history of assessments.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

const (
	// Defaults used at scoring time when a snapshot lacks a soil or activity reading.
	scoringSoilHealth = 0.5
	scoringActivity   = 0.5

	InsufficientPrompt = "Additional data needed for accurate analysis."
)

// Outcome is the result of an analysis request.
type Outcome struct {
	Status       constants.AnalysisStatus `json:"status"`
	Completeness CompletenessReport       `json:"completeness"`
	Prompt       string                   `json:"prompt,omitempty"`
	Missing      []string                 `json:"missing,omitempty"`
	Analysis     *entity.Analysis         `json:"analysis,omitempty"`
}

// Evaluate scores d and builds a new, unsaved analysis for forest f.
func Evaluate(f *entity.Forest, d *entity.ForestData) *entity.Analysis {
	var tc int64
	if d.TreeCount != nil {
		tc = *d.TreeCount
	}
	soil, activity := scoringSoilHealth, scoringActivity
	if d.SoilData != nil && d.SoilData.Health != nil {
		soil = *d.SoilData.Health
	}
	if d.AnimalData != nil && d.AnimalData.Activity != nil {
		activity = *d.AnimalData.Activity
	}

	score := RiskScore(&tc, &soil, &activity)
	in := Inputs{TreeCount: tc, SoilHealth: soil, AnimalActivity: activity}
	if f != nil {
		in.Coordinates = f.Coordinates
	}
	return &entity.Analysis{
		ForestID:        d.ForestID,
		RiskZones:       entity.RiskZones{Overall: score},
		Recommendations: RecommendationsFor(score),
		HeatMapData:     HeatMapFor(score, in),
		CreatedAt:       time.Now().UTC(),
	}
}

// Service runs analyses for the acting user's forests.
type Service struct {
	store  *repository.Store
	guest  common.GuestConfig
	logger *zap.Logger
}

func NewService(store *repository.Store, guest common.GuestConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, guest: guest, logger: logger}
}

// Start analyses the forest's current data and stores a new assessment.
// Records below the completeness gate are not analysed; the outcome then
// carries status "insufficient" and the missing fields.
func (s *Service) Start(ctx context.Context, forestID uuid.UUID) (*Outcome, error) {
	forest, err := s.ownedForest(ctx, forestID)
	if err != nil {
		return nil, err
	}

	data, err := s.store.ForestData.GetByForest(ctx, forest.ID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.InputRejected("No data uploaded for this forest", nil)
	}
	if err != nil {
		return nil, common.WrapError(err, "load forest data")
	}

	report := Completeness(data)
	if !report.Sufficient() {
		s.logger.Info("analysis.start.insufficient",
			zap.String("forest_id", forest.ID.String()),
			zap.Int("completeness", report.Percent),
			zap.Strings("missing", report.Missing),
		)
		return &Outcome{
			Status:       constants.AnalysisStatusInsufficient,
			Completeness: report,
			Prompt:       InsufficientPrompt,
			Missing:      report.Missing,
		}, nil
	}

	a := Evaluate(forest, data)
	if err := s.store.Analyses.Create(ctx, a); err != nil {
		s.logger.Error("analysis.persist.failed", zap.String("forest_id", forest.ID.String()), zap.Error(err))
		return nil, common.PersistenceFailure(err)
	}

	s.logger.Info("analysis.start.ok",
		zap.String("forest_id", forest.ID.String()),
		zap.String("analysis_id", a.ID.String()),
		zap.Float64("score", a.RiskZones.Overall),
		zap.String("severity", string(a.Recommendations.Severity)),
	)
	return &Outcome{Status: constants.AnalysisStatusOK, Completeness: report, Analysis: a}, nil
}

// History lists the forest's analyses, newest first.
func (s *Service) History(ctx context.Context, forestID uuid.UUID) ([]*entity.Analysis, error) {
	if _, err := s.ownedForest(ctx, forestID); err != nil {
		return nil, err
	}
	list, err := s.store.Analyses.ListByForest(ctx, forestID)
	if err != nil {
		return nil, common.WrapError(err, "list analyses")
	}
	return list, nil
}

func (s *Service) ownedForest(ctx context.Context, forestID uuid.UUID) (*entity.Forest, error) {
	return forests.OwnedForest(ctx, s.store, s.guest, forestID)
}
