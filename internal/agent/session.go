package agent

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/petasbytes/mlbchat/internal/prompt"
)

// Session is one recommendation run for one team. It is owned exclusively by
// the orchestrator for the duration of one strategy's execution.
type Session struct {
	ID                string
	Team              string
	Strategy          prompt.Strategy
	Transcript        []anthropic.MessageParam
	AssistantMessages int
}

func newSession(team string, strategy prompt.Strategy) *Session {
	return &Session{ID: uuid.NewString(), Team: team, Strategy: strategy}
}

// appendAssistant records the model's reply and bumps the budget counter.
func (s *Session) appendAssistant(msg *anthropic.Message) {
	s.Transcript = append(s.Transcript, msg.ToParam())
	s.AssistantMessages++
}

// Result is one strategy's outcome. On error the transcript holds whatever
// was collected before the failure.
type Result struct {
	Strategy       prompt.Strategy
	SessionID      string
	Transcript     []anthropic.MessageParam
	Recommendation string
	Err            error
}
