package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/repository/repotest"
)

var testGuest = common.GuestConfig{Name: "Guest", Email: "guest@wildsync.local", Password: "guest"}

func ptr[T any](v T) *T { return &v }

func TestRuleBased(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		question string
		fc       ForestContext
		want     string
	}{
		{
			name:     "risk with trees",
			question: "What is the RISK here?",
			fc:       ForestContext{TreeCount: ptr(int64(750))},
			want:     "Based on available data (tree count: 750), risk factors include canopy loss and soil health. Consider targeted reforestation and soil enrichment.",
		},
		{
			name:     "risk without data",
			question: "risk?",
			want:     "Based on available data (tree count: unknown), risk factors include canopy loss and soil health. Consider targeted reforestation and soil enrichment.",
		},
		{name: "species", question: "Which species should I plant?", want: speciesReply},
		{name: "other", question: "hello", want: fallbackReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RuleBased{}.Reply(ctx, tt.question, tt.fc)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newCompletionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model       string  `json:"model"`
			Temperature float32 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, systemPrompt, req.Messages[0].Content)
			assert.Contains(t, req.Messages[1].Content, "Question: ")
		}
		assert.InDelta(t, 0.2, req.Temperature, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func llmConfig(url string) common.LLMConfig {
	return common.LLMConfig{APIKey: "test-key", BaseURL: url, Model: "gpt-3.5-turbo", Temperature: 0.2, Timeout: 5 * time.Second}
}

func TestOpenAI_Reply(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, "  Plant native oaks.  ")
	o := NewOpenAI(llmConfig(srv.URL), zap.NewNop())
	require.NotNil(t, o)

	got, ok := o.Reply(context.Background(), "what now?", ForestContext{TreeCount: ptr(int64(3))})
	require.True(t, ok)
	assert.Equal(t, "Plant native oaks.", got)
}

func TestOpenAI_FailureIsSilent(t *testing.T) {
	srv := newCompletionServer(t, http.StatusInternalServerError, "")
	o := NewOpenAI(llmConfig(srv.URL), nil)
	cfg := llmConfig(srv.URL)
	cfg.APIKey = ""
	assert.Nil(t, NewOpenAI(cfg, nil))

	got, ok := o.Reply(context.Background(), "risk?", ForestContext{})
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestService_Ask(t *testing.T) {
	store, _ := repotest.Open(t)
	ctx := context.Background()
	seeded, err := forests.Seed(ctx, store, nil)
	require.NoError(t, err)

	svc := NewService(store, testGuest, nil, NewOpenAI(common.LLMConfig{}, nil))
	adminCtx := common.WithActor(ctx, seeded.Admin.ID)
	ans, err := svc.Ask(adminCtx, "Is there a risk?", &seeded.Forest.ID)
	require.NoError(t, err)
	assert.Contains(t, ans.Reply, "tree count: 750")

	hist, err := store.Chat.ListByUser(ctx, seeded.Admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Is there a risk?", hist[0].Message)
	assert.Equal(t, ans.Reply, hist[0].Response)

	_, err = svc.Ask(ctx, "   ", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestService_AskRequiresOwnForest(t *testing.T) {
	store, _ := repotest.Open(t)
	ctx := context.Background()
	seeded, err := forests.Seed(ctx, store, nil)
	require.NoError(t, err)
	svc := NewService(store, testGuest, nil)

	// the guest may not read the admin's measurements
	_, err = svc.Ask(ctx, "Is there a risk?", &seeded.Forest.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Forest not found", common.PublicMessage(err))

	missing := uuid.New()
	_, err = svc.Ask(ctx, "Is there a risk?", &missing)
	assert.ErrorIs(t, err, common.ErrNotFound)

	hist, err := store.Chat.ListByUser(ctx, forests.IdentityID(testGuest.Email), 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestService_LLMOverridesRules(t *testing.T) {
	store, _ := repotest.Open(t)
	srv := newCompletionServer(t, http.StatusOK, "Model answer")
	svc := NewService(store, testGuest, nil, NewOpenAI(llmConfig(srv.URL), nil))

	ans, err := svc.Ask(context.Background(), "species?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Model answer", ans.Reply)
}

func TestService_LLMFailureFallsBack(t *testing.T) {
	store, _ := repotest.Open(t)
	srv := newCompletionServer(t, http.StatusInternalServerError, "")
	svc := NewService(store, testGuest, nil, NewOpenAI(llmConfig(srv.URL), nil))

	ans, err := svc.Ask(context.Background(), "species?", nil)
	require.NoError(t, err)
	assert.Equal(t, speciesReply, ans.Reply)
}
