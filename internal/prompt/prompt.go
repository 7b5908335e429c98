package prompt

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Strategy selects one of the escalating prompting approaches.
type Strategy string

const (
	Simpleton Strategy = "simpleton"
	RoleBased Strategy = "role_based"
	ToolUsing Strategy = "tool_using"
)

// ErrInvalidInput is returned when a prompt cannot be built from the given inputs.
var ErrInvalidInput = errors.New("invalid input")

// AffirmativeReply is the fallback synthetic user turn once the richer
// follow-up prompts are exhausted.
const AffirmativeReply = "Yes, please do."

const gmPersona = "You are the General Manager of the %s.  You have been a baseball executive for 25 years.  Prior to that, you were a scout and involved in managing minor league teams.  Your analysis of baseball players and teams is largely based on modern statistical models.  While you are mindful of the payroll, your primary goal is to put a strong roster on the field and keep young talent within the organization."

const simpletonAsk = "What trades should the %s make before the deadline?"

const roleBasedAsk = "The trade deadline is coming up in the next few weeks.  Please evaluate the %s.  What are their strengths and weaknesses?  Should they be aggressive in trades?  Please list some candidate trades involving specific players and trade partners that would be appropriate for the team in its current situation."

const toolUsingAsk = "The trade deadline is coming up in the next few weeks.  Please evaluate the %s.  What are their strengths and weaknesses?  Should they be aggressive in trades?  If they are heading for the playoffs, what pieces would be best to focus on?  What areas could be improved for the future?  If they are likely sellers, what positions look like they could get good value back?"

const proposeCandidatesAsk = "Based on your analysis so far, please propose some specific trade candidates on the %s and trade targets on other teams. Please verify that the trade targets are currently on the roster of the trade partners that you mention, and that the potential trade would not be rejected by the other team based on common sense."

const explorePartnersAsk = "Let's keep exploring other potential trade partners.  Please continue to verify that the trade targets are currently on the roster of the trade partners that you mention, and that the potential trade would not be rejected by the other team based on common sense."

// Build returns the system prompt and initial user messages for a strategy.
// The system prompt is empty for Simpleton. Pure function of its inputs.
func Build(strategy Strategy, team string) (system string, msgs []anthropic.MessageParam, err error) {
	if team == "" {
		return "", nil, fmt.Errorf("%w: team name is empty", ErrInvalidInput)
	}
	switch strategy {
	case Simpleton:
		return "", userText(simpletonAsk, team), nil
	case RoleBased:
		return fmt.Sprintf(gmPersona, team), userText(roleBasedAsk, team), nil
	case ToolUsing:
		return fmt.Sprintf(gmPersona, team), userText(toolUsingAsk, team), nil
	}
	return "", nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, strategy)
}

// FollowUps returns the ordered synthetic user replies used by the
// continuation policy before it falls back to AffirmativeReply.
func FollowUps(team string) []string {
	return []string{
		fmt.Sprintf(proposeCandidatesAsk, team),
		explorePartnersAsk,
	}
}

func userText(format, team string) []anthropic.MessageParam {
	return []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(format, team))),
	}
}
