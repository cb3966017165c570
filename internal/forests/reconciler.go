// Package forests owns forest records: reconciling extracted payloads into
// stored forests and their measurement snapshot, acting identities, and seed data.
package forests

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/payload"
	"github.com/joseph-ayodele/wildsync/internal/repository"
	"github.com/joseph-ayodele/wildsync/internal/schema"
)

// Source describes the document a payload came from.
type Source struct {
	Filename string
	Ext      string
	Size     int64
	Hash     []byte
	Path     string // where the bytes were kept, "" when not stored
}

// Reconciled is the committed state after Apply.
type Reconciled struct {
	Forest       *entity.Forest
	Data         *entity.ForestData
	Created      bool // a new forest was created
	Deduplicated bool // the same content was already applied to this forest
}

// Reconciler applies payloads to stored forests.
//
// Two concurrent Apply calls for the same forest are not serialised: each does a
// read-modify-write and the last to commit wins.
type Reconciler struct {
	store  *repository.Store
	guest  common.GuestConfig
	logger *zap.Logger
}

func NewReconciler(store *repository.Store, guest common.GuestConfig, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, guest: guest, logger: logger}
}

// Apply updates the forest named by forestID, or creates one for the acting user
// when forestID is nil or unknown, then merges p into the forest's data record.
// All writes commit together. Storage failures surface as a persistence error.
func (r *Reconciler) Apply(ctx context.Context, forestID *uuid.UUID, p payload.Payload, src *Source) (*Reconciled, error) {
	var out Reconciled
	err := r.store.WithTx(ctx, func(tx *repository.Store) error {
		actor, err := ResolveActor(ctx, tx, r.guest, r.logger)
		if err != nil {
			return err
		}

		forest, created, err := r.applyForest(ctx, tx, actor, forestID, p.Forest)
		if err != nil {
			return err
		}
		out.Forest, out.Created = forest, created

		if out.Data, err = r.applyData(ctx, tx, forest.ID, p.Data); err != nil {
			return err
		}

		if src != nil {
			if out.Deduplicated, err = tx.Uploads.ExistsByHash(ctx, forest.ID, src.Hash); err != nil {
				return err
			}
			return tx.Uploads.Create(ctx, &entity.Upload{
				ForestID:    forest.ID,
				Filename:    src.Filename,
				FileExt:     src.Ext,
				FileSize:    src.Size,
				ContentHash: src.Hash,
				StoredPath:  src.Path,
			})
		}
		return nil
	})
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			r.logger.Warn("reconcile.rejected", zap.String("code", appErr.Code), zap.Error(err))
			return nil, err
		}
		r.logger.Error("reconcile.persist.failed", zap.Error(err))
		return nil, common.PersistenceFailure(err)
	}

	r.logger.Info("reconcile.ok",
		zap.String("forest_id", out.Forest.ID.String()),
		zap.Bool("created", out.Created),
		zap.Bool("deduplicated", out.Deduplicated),
	)
	return &out, nil
}

func (r *Reconciler) applyForest(ctx context.Context, tx *repository.Store, actor *entity.User, forestID *uuid.UUID, u payload.ForestUpdate) (*entity.Forest, bool, error) {
	if forestID != nil {
		f, err := tx.Forests.GetByID(ctx, *forestID)
		switch {
		case err == nil:
			if f.UserID != actor.ID {
				return nil, false, common.NotFound("Forest not found")
			}
			MergeForest(f, u)
			return f, false, tx.Forests.Update(ctx, f)
		case !errors.Is(err, common.ErrNotFound):
			return nil, false, err
		}
		r.logger.Debug("reconcile.forest.unknown", zap.String("forest_id", forestID.String()))
	}

	f := &entity.Forest{UserID: actor.ID}
	MergeForest(f, u)
	if err := tx.Forests.Create(ctx, f); err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func (r *Reconciler) applyData(ctx context.Context, tx *repository.Store, forestID uuid.UUID, u payload.DataUpdate) (*entity.ForestData, error) {
	d, err := tx.ForestData.GetByForest(ctx, forestID)
	create := errors.Is(err, common.ErrNotFound)
	if err != nil && !create {
		return nil, err
	}
	if create {
		d = &entity.ForestData{ForestID: forestID}
	}
	MergeData(d, u)

	if err := schema.ValidateForestData(d); err != nil {
		return nil, common.InputRejected("Forest data failed validation", err)
	}
	if create {
		return d, tx.ForestData.Create(ctx, d)
	}
	return d, tx.ForestData.Update(ctx, d)
}

// MergeForest copies the fields present in u onto f.
func MergeForest(f *entity.Forest, u payload.ForestUpdate) {
	if u.Location != nil {
		f.Location = u.Location
	}
	if u.Area != nil {
		f.Area = u.Area
	}
	if u.Coordinates != nil {
		f.Coordinates = u.Coordinates
	}
}

// MergeData copies the fields present in u onto d. Soil, animal and calamity
// entries merge key by key.
func MergeData(d *entity.ForestData, u payload.DataUpdate) {
	if u.TreeCount != nil {
		d.TreeCount = u.TreeCount
	}
	if u.SoilData != nil {
		if d.SoilData == nil {
			d.SoilData = &entity.SoilData{}
		}
		if u.SoilData.Health != nil {
			d.SoilData.Health = u.SoilData.Health
		}
		if u.SoilData.PH != nil {
			d.SoilData.PH = u.SoilData.PH
		}
		if u.SoilData.Moisture != nil {
			d.SoilData.Moisture = u.SoilData.Moisture
		}
	}
	if u.AnimalData != nil {
		if d.AnimalData == nil {
			d.AnimalData = &entity.AnimalData{}
		}
		if u.AnimalData.Activity != nil {
			d.AnimalData.Activity = u.AnimalData.Activity
		}
		if u.AnimalData.SpeciesRichness != nil {
			d.AnimalData.SpeciesRichness = u.AnimalData.SpeciesRichness
		}
	}
	if len(u.CalamityHistory) > 0 {
		if d.CalamityHistory == nil {
			d.CalamityHistory = entity.CalamityHistory{}
		}
		for k, v := range u.CalamityHistory {
			d.CalamityHistory[k] = v
		}
	}
}
