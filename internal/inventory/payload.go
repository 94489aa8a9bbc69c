package inventory

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// Payload is a decoded request body: a flat JSON object whose values are
// interpreted per field.
type Payload map[string]json.RawMessage

func DecodePayload(w http.ResponseWriter, r *http.Request) (Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// String returns the field when it is a JSON string, "" otherwise.
func (p Payload) String(key string) string {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return ""
	}
	return s
}

// Number returns nil for an absent field, null or "". Numeric strings are
// accepted; anything else is invalid input.
func (p Payload) Number(key string) (*float64, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, invalid("%s must be a number", key)
	}
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	n, ok := number(v)
	if !ok {
		return nil, invalid("%s must be a number", key)
	}
	return &n, nil
}
