package agent

// OverBudget reports whether the count of assistant-originated messages has
// exceeded the configured ceiling. Deliberately blunt: the loop halts the
// moment this trips, leaving any unresolved tool calls undispatched.
func OverBudget(assistantMessages, limit int) bool {
	return assistantMessages > limit
}
