package ai

import (
	"context"
	"time"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

const (
	chatMaxTokens     = 350
	chatHistoryTurns  = 6
	generatedChatConf = 0.9
)

// phoneSafetyPersona frames the generator as the in-app safety assistant
const phoneSafetyPersona = `You are an AI phone safety assistant for the PhoneTracer app.
You help users understand phone scams, spam calls, VoIP numbers, caller ID spoofing,
phishing, robocalls, privacy protection, and how to block/report unwanted calls.

Key facts you know:
- VoIP numbers are internet-based and can be used for spoofing
- Wangiri scams use one-ring missed calls from international numbers
- Users should never share SSN, bank details, or passwords over the phone
- Common scam tactics: urgency, threats, prize offers, impersonation
- Users can report spam to FTC (US), FCC (US), ICO (UK), TRAI (India)
- Phone blocking: iPhone (Settings > Phone > Silence Unknown Callers), Android (Phone app > Block)
- MNP (Mobile Number Portability) means carriers can change
- Caller ID can be spoofed using VoIP services

Be helpful, concise, and practical. Use bullet points for lists.
If asked something unrelated to phone safety, politely redirect.`

// Assistant answers phone-safety questions
type Assistant struct {
	generator TextGenerator
	logger    *logger.Logger
	now       func() time.Time
}

// NewAssistant creates a chat assistant. gen may be nil.
func NewAssistant(gen TextGenerator, log *logger.Logger) *Assistant {
	return &Assistant{
		generator: gen,
		logger:    log.WithComponent("chat-assistant"),
		now:       time.Now,
	}
}

// Chat answers a message. The generator is tried first; the knowledge base
// answers otherwise, so the response is never empty.
func (a *Assistant) Chat(ctx context.Context, message string, history []models.ChatTurn) models.ChatResult {
	text, ok := generateText(ctx, a.generator, GenerationRequest{
		System:    phoneSafetyPersona,
		Prompt:    message,
		History:   lastTurns(history, chatHistoryTurns),
		MaxTokens: chatMaxTokens,
	}, a.logger)
	if ok {
		metrics.RecordChat(string(models.AISourceLLM))
		return models.ChatResult{
			Response:   text,
			Confidence: generatedChatConf,
			AISource:   models.AISourceLLM,
			Model:      a.generator.ModelName(),
			Timestamp:  a.now().UTC(),
		}
	}

	response, confidence := MatchKnowledge(message)
	metrics.RecordChat(string(models.AISourceRuleBased))
	return models.ChatResult{
		Response:   response,
		Confidence: confidence,
		AISource:   models.AISourceRuleBased,
		Timestamp:  a.now().UTC(),
	}
}

func lastTurns(history []models.ChatTurn, n int) []models.ChatTurn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
