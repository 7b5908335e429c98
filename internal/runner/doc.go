// Package runner coordinates message exchange with the Anthropic Messages API
// and dispatches tool calls against the remote stats server.
//
// Invariant:
//   - tool_use and the corresponding tool_result are kept adjacent within a
//     turn, correlated by call ID, in the order the model emitted the calls.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
