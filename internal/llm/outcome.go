package llm

import (
	"bytes"
	"context"
	"encoding/json"
)

// Outcome is the result of one completion call, classified for the
// soft-failure policy: a transport error, a response that is not valid
// JSON, or a parsed JSON object.
type Outcome struct {
	// Payload holds the parsed JSON object when parsing succeeded.
	Payload map[string]any
	// Raw is the cleaned response text, set whenever a response was received.
	Raw string
	// Err is the transport error, set only when the call itself failed.
	Err error
}

// OK reports whether the call produced a parsed JSON object.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Payload != nil
}

// Failed reports whether the call itself failed before any response text
// was received.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Fallback returns the payload to persist when no parsed object is
// available: {"error": ...} for a transport failure, {"raw_response": ...}
// for an unparseable response.
func (o Outcome) Fallback() map[string]any {
	if o.Err != nil {
		return map[string]any{"error": o.Err.Error()}
	}
	return map[string]any{"raw_response": o.Raw}
}

// Demote converts a parsed outcome back into an unparseable one. Used when
// the response parsed as JSON but failed shape validation afterwards.
func (o Outcome) Demote() Outcome {
	return Outcome{Raw: o.Raw}
}

// Invoke runs one completion call through client and classifies the result.
// A transport error yields a failed outcome, a non-JSON response yields a
// raw-only outcome, and valid JSON yields a parsed outcome. It never
// returns an error: callers persist the classified outcome instead of
// propagating failures.
func Invoke(ctx context.Context, client Client, req Request) Outcome {
	text, err := client.Complete(ctx, req)
	if err != nil {
		return Outcome{Err: err}
	}

	cleaned := CleanJSONBlock(text)
	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Outcome{Raw: cleaned}
	}
	return Outcome{Payload: payload, Raw: cleaned}
}

// MarshalIndent renders a payload the way API responses and stored
// documents expect it: two-space indent, HTML escaping off.
func MarshalIndent(payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
