package apierror

import (
	"encoding/json"
	"math"
)

// RawBody is the error object as sent by the remote service. Every field is
// optional; a nil pointer means the field was absent, null, of the wrong type,
// or, for numbers, not a whole number that fits an int.
type RawBody struct {
	Error       *string
	ErrorCode   *string
	Message     *string
	RequestID   *string
	Limit       *int
	Window      *string
	RetryAfter  *int
	Attribution *Attribution
}

// ParseRawBody decodes an error response body leniently. Bodies that are empty,
// not JSON, or not a JSON object yield an empty RawBody. Fields are decoded one
// by one so that a single mistyped field does not discard the others.
func ParseRawBody(body []byte) RawBody {
	var fields map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &fields) != nil {
		return RawBody{}
	}

	return RawBody{
		Error:       stringField(fields, "error"),
		ErrorCode:   stringField(fields, "error_code"),
		Message:     stringField(fields, "message"),
		RequestID:   stringField(fields, "request_id"),
		Limit:       intField(fields, "limit"),
		Window:      stringField(fields, "window"),
		RetryAfter:  intField(fields, "retry_after"),
		Attribution: attributionField(fields, "attribution"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

func intField(fields map[string]json.RawMessage, key string) *int {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return nil
	}
	// Fractions and values outside the int range have no faithful int form.
	if *f != math.Trunc(*f) || *f < math.MinInt || *f >= math.MaxInt {
		return nil
	}
	n := int(*f)
	return &n
}

func attributionField(fields map[string]json.RawMessage, key string) *Attribution {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var a *Attribution
	if err := json.Unmarshal(raw, &a); err != nil || a == nil || a.IsZero() {
		return nil
	}
	return a
}
