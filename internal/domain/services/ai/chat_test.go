package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonetracer/internal/domain/models"
	"phonetracer/pkg/logger"
)

func TestMatchKnowledge(t *testing.T) {
	t.Run("block question", func(t *testing.T) {
		resp, conf := MatchKnowledge("How do I block unwanted calls?")
		assert.True(t, strings.HasPrefix(resp, "🛡️ **How to Block Unwanted Calls:**"))
		assert.InDelta(t, 0.5, conf, 1e-9)
	})

	t.Run("longer patterns win", func(t *testing.T) {
		resp, conf := MatchKnowledge("What is a WANGIRI one ring scam?")
		// wangiri(7) + one ring(8) beats scam(4)
		assert.True(t, strings.HasPrefix(resp, "☎️ **Wangiri (One Ring) Scam:**"))
		assert.InDelta(t, 1.0, conf, 1e-9)
	})

	t.Run("ties keep the first entry", func(t *testing.T) {
		// "spot" (scam) and "data" (privacy) both score 4
		resp, _ := MatchKnowledge("spot data")
		assert.True(t, strings.HasPrefix(resp, "🔍 **How to Identify Scam Calls:**"))
	})

	t.Run("nonsense", func(t *testing.T) {
		resp, conf := MatchKnowledge("qwxz")
		assert.Equal(t, DefaultKnowledgeResponse, resp)
		assert.Zero(t, conf)
	})

	t.Run("empty", func(t *testing.T) {
		resp, conf := MatchKnowledge("   ")
		assert.Equal(t, DefaultKnowledgeResponse, resp)
		assert.Zero(t, conf)
	})

	t.Run("deterministic", func(t *testing.T) {
		r1, c1 := MatchKnowledge("should i answer an unknown number?")
		r2, c2 := MatchKnowledge("should i answer an unknown number?")
		assert.Equal(t, r1, r2)
		assert.Equal(t, c1, c2)
	})
}

func TestKnowledgeBaseEntries(t *testing.T) {
	require.Len(t, knowledgeBase, 11)
	for _, e := range knowledgeBase {
		assert.NotEmpty(t, e.patterns, e.topic)
		assert.NotEmpty(t, e.response, e.topic)
		for _, p := range e.patterns {
			assert.Equal(t, strings.ToLower(p), p, "patterns are matched against lower-cased text")
		}
	}
}

func newTestAssistant(gen TextGenerator) *Assistant {
	a := NewAssistant(gen, logger.NewNop())
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestChat_FallsBackToKnowledgeBase(t *testing.T) {
	res := newTestAssistant(nil).Chat(context.Background(), "How do I block unwanted calls?", nil)

	assert.Equal(t, models.AISourceRuleBased, res.AISource)
	assert.Empty(t, res.Model)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
	assert.Contains(t, res.Response, "How to Block Unwanted Calls")
	assert.Equal(t, fixedNow, res.Timestamp)
}

func TestChat_UsesGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "Hang up, then call your bank using the number on your card."}
	history := []models.ChatTurn{
		{Role: "user", Content: "1"}, {Role: "assistant", Content: "2"},
		{Role: "user", Content: "3"}, {Role: "assistant", Content: "4"},
		{Role: "user", Content: "5"}, {Role: "assistant", Content: "6"},
		{Role: "user", Content: "7"}, {Role: "assistant", Content: "8"},
	}

	res := newTestAssistant(gen).Chat(context.Background(), "Someone says they are my bank", history)

	assert.Equal(t, models.AISourceLLM, res.AISource)
	assert.Equal(t, "fake-model", res.Model)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.Equal(t, gen.text, res.Response)

	assert.Equal(t, phoneSafetyPersona, gen.last.System)
	assert.Equal(t, "Someone says they are my bank", gen.last.Prompt)
	assert.Equal(t, 350, gen.last.MaxTokens)
	require.Len(t, gen.last.History, 6)
	assert.Equal(t, "3", gen.last.History[0].Content)
}

func TestChat_RejectsShortOrFailedGeneration(t *testing.T) {
	for _, gen := range []*fakeGenerator{
		{text: "Block it."},
		{err: errors.New("connection refused")},
		{err: ErrRateLimited},
	} {
		res := newTestAssistant(gen).Chat(context.Background(), "hello", nil)
		assert.Equal(t, models.AISourceRuleBased, res.AISource)
		assert.Contains(t, res.Response, "Phone Safety AI Assistant")
		assert.NotEmpty(t, res.Response)
	}
}
