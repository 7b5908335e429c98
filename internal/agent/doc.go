// Package agent drives the three trade-recommendation strategies.
//
// The tool-using strategy is a small state machine:
//
//	INIT -> AWAIT_MODEL -> {DISPATCH_TOOLS | APPLY_CONTINUATION | DONE}
//
// looping back to AWAIT_MODEL after tool dispatch or a synthetic continuation
// turn, until the model stops offering work, the assistant-message budget
// trips, or the LLM collaborator fails.
//
// Invariants:
//   - one Session per strategy run; nothing is shared between strategies.
//   - tool results follow their tool_use message immediately and in order.
//   - the budget counts assistant-originated messages only; when it trips the
//     transcript is finalized as-is, with any pending tool calls undispatched.
package agent
