package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

// Answer is the reply to one question.
type Answer struct {
	Reply    string     `json:"reply"`
	ForestID *uuid.UUID `json:"forest_id,omitempty"`
}

// Service answers questions and records the exchange.
type Service struct {
	store      *repository.Store
	guest      common.GuestConfig
	responders []Responder
	logger     *zap.Logger
}

// NewService tries responders in order after the rule-based one; the last
// successful reply wins. nil responders are skipped.
func NewService(store *repository.Store, guest common.GuestConfig, logger *zap.Logger, responders ...Responder) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain := []Responder{RuleBased{}}
	for _, r := range responders {
		if r == nil {
			continue
		}
		if o, ok := r.(*OpenAI); ok && o == nil {
			continue
		}
		chain = append(chain, r)
	}
	return &Service{store: store, guest: guest, responders: chain, logger: logger}
}

// Ask answers question, using forestID's data as context when it exists.
// forestID must name a forest of the acting user (or the guest).
func (s *Service) Ask(ctx context.Context, question string, forestID *uuid.UUID) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, common.InputRejected("message is required", nil)
	}

	var data *entity.ForestData
	if forestID != nil {
		if _, err := forests.OwnedForest(ctx, s.store, s.guest, *forestID); err != nil {
			s.logger.Info("chat.ask.forest_rejected", zap.String("forest_id", forestID.String()), zap.Error(err))
			return nil, err
		}
		d, err := s.store.ForestData.GetByForest(ctx, *forestID)
		switch {
		case err == nil:
			data = d
		case !errors.Is(err, common.ErrNotFound):
			return nil, common.WrapError(err, "load forest data")
		}
	}
	fc := ContextFor(data)

	var reply string
	for _, r := range s.responders {
		if got, ok := r.Reply(ctx, question, fc); ok {
			reply = got
		}
	}

	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		actor, err := forests.ResolveActor(ctx, tx, s.guest, s.logger)
		if err != nil {
			return err
		}
		msg := &entity.ChatMessage{UserID: actor.ID, Message: question, Response: reply}
		if data != nil {
			msg.ForestID = forestID
		}
		return tx.Chat.Create(ctx, msg)
	})
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.logger.Error("chat.persist.failed", zap.Error(err))
		return nil, common.PersistenceFailure(err)
	}

	s.logger.Info("chat.ask.ok", zap.Bool("has_context", data != nil), zap.Int("reply_len", len(reply)))
	return &Answer{Reply: reply, ForestID: forestID}, nil
}
