// Package chat answers forest-management questions, using a language model when
// one is configured and fixed rules otherwise.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

// ForestContext is the measurement snapshot a question is asked about.
type ForestContext struct {
	TreeCount *int64             `json:"tree_count,omitempty"`
	Soil      *entity.SoilData   `json:"soil,omitempty"`
	Animals   *entity.AnimalData `json:"animals,omitempty"`
}

// ContextFor builds the question context from a forest's data record. d may be nil.
func ContextFor(d *entity.ForestData) ForestContext {
	if d == nil {
		return ForestContext{}
	}
	return ForestContext{TreeCount: d.TreeCount, Soil: d.SoilData, Animals: d.AnimalData}
}

// String renders the context for a prompt.
func (fc ForestContext) String() string {
	b, err := json.Marshal(fc)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Responder answers a question; ok is false when it has no answer.
type Responder interface {
	Reply(ctx context.Context, question string, fc ForestContext) (string, bool)
}

const (
	speciesReply  = "Native species suited to your soil profile and climate are recommended. Prioritize soil-stabilizing trees."
	fallbackReply = "Please provide more details about your question or the forest data you're analyzing."
)

// RuleBased answers from keywords in the question. It always has an answer.
type RuleBased struct{}

func (RuleBased) Reply(_ context.Context, question string, fc ForestContext) (string, bool) {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "risk"):
		tc := "unknown"
		if fc.TreeCount != nil {
			tc = fmt.Sprintf("%d", *fc.TreeCount)
		}
		return fmt.Sprintf("Based on available data (tree count: %s), risk factors include canopy loss and soil health. "+
			"Consider targeted reforestation and soil enrichment.", tc), true
	case strings.Contains(q, "species"):
		return speciesReply, true
	default:
		return fallbackReply, true
	}
}
