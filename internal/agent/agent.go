package agent

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mlbchat/internal/config"
	"github.com/petasbytes/mlbchat/internal/prompt"
	"github.com/petasbytes/mlbchat/internal/runner"
	"github.com/petasbytes/mlbchat/internal/statsmcp"
	"github.com/petasbytes/mlbchat/internal/telemetry"
)

// TurnExecutor sends one conversation state to the model.
type TurnExecutor interface {
	RunTurn(ctx context.Context, req runner.TurnRequest) (*anthropic.Message, error)
}

// ToolDispatcher executes tool calls and returns correlated tool_result blocks.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, catalog []statsmcp.ToolDescriptor, calls []runner.ToolCall) []anthropic.ContentBlockParamUnion
}

// CatalogFetcher lists the stats server's tools.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]statsmcp.ToolDescriptor, error)
}

// Orchestrator runs the strategies against injected collaborators so the
// state machine stays testable with stubs.
type Orchestrator struct {
	cfg       config.Config
	exec      TurnExecutor
	disp      ToolDispatcher
	catalog   CatalogFetcher
	newPolicy func(team string) ContinuationPolicy
	log       *slog.Logger
}

func New(cfg config.Config, exec TurnExecutor, disp ToolDispatcher, catalog CatalogFetcher, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg:     cfg,
		exec:    exec,
		disp:    disp,
		catalog: catalog,
		newPolicy: func(team string) ContinuationPolicy {
			return NewPhrasePolicy(team)
		},
		log: log,
	}
}

// SetContinuationPolicy swaps the policy factory used for tool-using sessions.
func (o *Orchestrator) SetContinuationPolicy(factory func(team string) ContinuationPolicy) {
	o.newPolicy = factory
}

// RunAll runs the three strategies sequentially. A failure in one never
// prevents the others from running.
func (o *Orchestrator) RunAll(ctx context.Context, team string) []Result {
	return []Result{
		o.Run(ctx, prompt.Simpleton, team),
		o.Run(ctx, prompt.RoleBased, team),
		o.Run(ctx, prompt.ToolUsing, team),
	}
}

// Run executes one strategy for one team in a fresh session.
func (o *Orchestrator) Run(ctx context.Context, strategy prompt.Strategy, team string) Result {
	sess := newSession(team, strategy)
	ctx = telemetry.WithSessionID(ctx, sess.ID)
	telemetry.Emit("strategy_start", map[string]any{
		"session_id": sess.ID,
		"strategy":   string(strategy),
		"team":       team,
	})
	o.log.Info("strategy start", "strategy", strategy, "team", team, "session_id", sess.ID)

	var res Result
	if strategy == prompt.ToolUsing {
		res = o.runToolLoop(ctx, sess)
	} else {
		res = o.runSingleShot(ctx, sess)
	}

	telemetry.Emit("strategy_complete", map[string]any{
		"session_id":         sess.ID,
		"strategy":           string(strategy),
		"messages":           len(res.Transcript),
		"assistant_messages": sess.AssistantMessages,
		"failed":             res.Err != nil,
	})
	if res.Err != nil {
		o.log.Error("strategy failed", "strategy", strategy, "error", res.Err)
	} else {
		o.log.Info("strategy complete", "strategy", strategy, "messages", len(res.Transcript))
	}
	return res
}

// runSingleShot is one AWAIT_MODEL pass with no tools and no continuation.
func (o *Orchestrator) runSingleShot(ctx context.Context, sess *Session) Result {
	system, initial, err := prompt.Build(sess.Strategy, sess.Team)
	if err != nil {
		return o.finish(sess, "", err)
	}
	sess.Transcript = initial

	msg, err := o.exec.RunTurn(ctx, o.turnRequest(system, sess.Transcript, nil))
	if err != nil {
		return o.finish(sess, "", err)
	}
	sess.appendAssistant(msg)
	return o.finish(sess, runner.AssistantText(msg), nil)
}

// runToolLoop drives AWAIT_MODEL -> {DISPATCH_TOOLS | APPLY_CONTINUATION}
// until a terminal condition.
func (o *Orchestrator) runToolLoop(ctx context.Context, sess *Session) Result {
	catalog, err := o.catalog.FetchCatalog(ctx)
	if err != nil {
		return o.finish(sess, "", err)
	}
	system, initial, err := prompt.Build(sess.Strategy, sess.Team)
	if err != nil {
		return o.finish(sess, "", err)
	}
	sess.Transcript = initial

	toolParams := runner.AnthropicTools(catalog)
	policy := o.newPolicy(sess.Team)
	var recommendation string

	for {
		msg, err := o.exec.RunTurn(ctx, o.turnRequest(system, sess.Transcript, toolParams))
		if err != nil {
			// Abort the loop; the transcript keeps what was collected.
			return o.finish(sess, recommendation, err)
		}
		sess.appendAssistant(msg)
		if text := runner.AssistantText(msg); text != "" {
			recommendation = text
		}

		if OverBudget(sess.AssistantMessages, o.cfg.Agent.MaxAssistantMessages) {
			telemetry.Emit("budget_exceeded", map[string]any{
				"session_id":         sess.ID,
				"assistant_messages": sess.AssistantMessages,
				"limit":              o.cfg.Agent.MaxAssistantMessages,
			})
			o.log.Warn("assistant message budget exceeded",
				"assistant_messages", sess.AssistantMessages,
				"limit", o.cfg.Agent.MaxAssistantMessages)
			return o.finish(sess, recommendation, nil)
		}

		if calls := runner.ToolCalls(msg); len(calls) > 0 {
			results := o.disp.Dispatch(ctx, catalog, calls)
			sess.Transcript = append(sess.Transcript, anthropic.NewUserMessage(results...))
			continue
		}

		userMsg, ok := policy.ShouldContinue(runner.AssistantText(msg))
		if !ok {
			// The model considers its answer complete.
			return o.finish(sess, recommendation, nil)
		}
		telemetry.Emit("continuation", map[string]any{"session_id": sess.ID})
		sess.Transcript = append(sess.Transcript, userMsg)
	}
}

func (o *Orchestrator) turnRequest(system string, msgs []anthropic.MessageParam, tools []anthropic.ToolUnionParam) runner.TurnRequest {
	return runner.TurnRequest{
		Model:       anthropic.Model(o.cfg.Claude.Model),
		MaxTokens:   o.cfg.Claude.MaxTokens,
		Temperature: o.cfg.Claude.Temperature,
		System:      system,
		Messages:    msgs,
		Tools:       tools,
	}
}

func (o *Orchestrator) finish(sess *Session, recommendation string, err error) Result {
	return Result{
		Strategy:       sess.Strategy,
		SessionID:      sess.ID,
		Transcript:     sess.Transcript,
		Recommendation: recommendation,
		Err:            err,
	}
}
