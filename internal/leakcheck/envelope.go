// Package leakcheck verifies that the messaging inbox endpoint does not
// return rows outside the caller's authorized scope. The suite never calls
// the endpoint directly; it inspects responses captured passively while a
// scenario navigates, so the check is read-only by construction.
package leakcheck

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// InboxEndpoint is the URL fragment identifying the list endpoint under watch.
const InboxEndpoint = "/api/trpc/messaging.inboxList"

// payloadSchema pins down the minimum shape we rely on. Anything else in the
// payload is ignored rather than guessed at with optional-access chains.
const payloadSchema = `{
	"type": "object",
	"required": ["rows"],
	"properties": {
		"rows": {"type": "array"},
		"meta": {
			"type": "object",
			"properties": {
				"myCount": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

// Payload is the validated inbox list envelope.
type Payload struct {
	Rows []json.RawMessage `json:"rows"`
	Meta Meta              `json:"meta"`
}

// Meta carries the server-declared scope count when the backend provides one.
type Meta struct {
	MyCount *int `json:"myCount"`
}

// EnvelopeError reports a response body that does not carry the expected
// tRPC envelope or payload shape. It is a parse failure, not a leak signal.
type EnvelopeError struct {
	Reason string
}

func (e *EnvelopeError) Error() string {
	return "inboxList envelope: " + e.Reason
}

// LeakError reports a row count that contradicts the server's own declared
// scope count. Any deviation is treated as an authorization-scope leak.
type LeakError struct {
	Rows    int
	MyCount int
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("inboxList scope leak: got %d rows, server declared myCount=%d", e.Rows, e.MyCount)
}

// trpcEnvelope mirrors the nesting of a single tRPC result.
type trpcEnvelope struct {
	Result struct {
		Data struct {
			JSON json.RawMessage `json:"json"`
		} `json:"data"`
	} `json:"result"`
}

// Parse extracts and validates the inbox payload from a raw response body.
// Both batch encodings observed upstream are accepted: an array-wrapped
// envelope ([{result:{data:{json:…}}}]) and a bare object envelope.
func Parse(body []byte) (*Payload, error) {
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(payloadSchema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return nil, &EnvelopeError{Reason: "payload is not valid JSON: " + err.Error()}
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, &EnvelopeError{Reason: strings.Join(reasons, "; ")}
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &EnvelopeError{Reason: err.Error()}
	}
	return &p, nil
}

func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, &EnvelopeError{Reason: "empty response body"}
	}

	if strings.HasPrefix(trimmed, "[") {
		var batch []trpcEnvelope
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, &EnvelopeError{Reason: "malformed batch envelope: " + err.Error()}
		}
		if len(batch) == 0 || len(batch[0].Result.Data.JSON) == 0 {
			return nil, &EnvelopeError{Reason: "batch envelope missing result.data.json"}
		}
		return batch[0].Result.Data.JSON, nil
	}

	var env trpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &EnvelopeError{Reason: "malformed envelope: " + err.Error()}
	}
	if len(env.Result.Data.JSON) == 0 {
		return nil, &EnvelopeError{Reason: "envelope missing result.data.json"}
	}
	return env.Result.Data.JSON, nil
}

// Verify applies the strict scope check. It returns (true, nil) when the
// server declared myCount and the row count matches, (false, nil) when
// myCount is absent (reduced guarantee, caller should log the downgrade),
// and a LeakError on any mismatch.
func Verify(p *Payload) (checked bool, err error) {
	if p.Meta.MyCount == nil {
		return false, nil
	}
	if len(p.Rows) != *p.Meta.MyCount {
		return true, &LeakError{Rows: len(p.Rows), MyCount: *p.Meta.MyCount}
	}
	return true, nil
}
