package agent

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mlbchat/internal/prompt"
)

// ContinuationPolicy decides whether a plain-text assistant reply should be
// answered with a synthetic user turn instead of ending the session. The
// phrase heuristic is the default; a structured "needs more info" signal can
// be swapped in without touching the orchestrator.
type ContinuationPolicy interface {
	ShouldContinue(assistantText string) (anthropic.MessageParam, bool)
}

// defaultTriggers are matched case-insensitively as substrings of the
// assistant's text. They catch the model offering to look something up or to
// keep going.
var defaultTriggers = []string{
	"would you like",
	"shall i",
	"do you want",
	"want me to",
	"let me know if",
	"i can also",
}

// PhrasePolicy replies to a matched offer with the next canned follow-up,
// then falls back to a plain affirmative once those are spent.
type PhrasePolicy struct {
	triggers []string
	replies  []string
	next     int
}

func NewPhrasePolicy(team string) *PhrasePolicy {
	return &PhrasePolicy{triggers: defaultTriggers, replies: prompt.FollowUps(team)}
}

func (p *PhrasePolicy) ShouldContinue(assistantText string) (anthropic.MessageParam, bool) {
	lowered := strings.ToLower(assistantText)
	matched := false
	for _, trigger := range p.triggers {
		if strings.Contains(lowered, trigger) {
			matched = true
			break
		}
	}
	if !matched {
		return anthropic.MessageParam{}, false
	}
	reply := prompt.AffirmativeReply
	if p.next < len(p.replies) {
		reply = p.replies[p.next]
		p.next++
	}
	return anthropic.NewUserMessage(anthropic.NewTextBlock(reply)), true
}
