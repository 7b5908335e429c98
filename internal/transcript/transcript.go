// Package transcript renders finished conversations for the console report.
//
// Nothing is persisted: a transcript lives only as long as the process, and
// the rendered form exists for humans reading the trade analysis.
package transcript

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
)

// Render returns the transcript as indented JSON, one object per message in
// conversation order.
func Render(msgs []anthropic.MessageParam) (string, error) {
	b, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
