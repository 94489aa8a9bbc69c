package inventory

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// RawDocument is a persisted document as decoded from JSON, before any
// schema coercion.
type RawDocument map[string]any

var errEmptyDocument = errors.New("document is not a JSON object")

func ParseRaw(data []byte) (RawDocument, error) {
	var raw RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errEmptyDocument
	}
	return raw, nil
}

// Normalize coerces a raw document into the current schema. It is pure and
// idempotent: normalizing the encoded output of Normalize yields the same
// Document.
func Normalize(raw RawDocument) Document {
	d := Document{
		Alcohols: []AlcoholItem{},
		Shishas:  []ShishaItem{},
		Misc:     []MiscItem{},
	}

	for _, obj := range objects(raw["alcohols"]) {
		name, ok := itemName(obj)
		if !ok {
			continue
		}
		d.Alcohols = append(d.Alcohols, normalizeAlcohol(name, obj))
	}
	for _, obj := range objects(raw["shishas"]) {
		name, ok := itemName(obj)
		if !ok {
			continue
		}
		d.Shishas = append(d.Shishas, normalizeShisha(name, obj))
	}
	for _, obj := range objects(raw["misc"]) {
		name, ok := itemName(obj)
		if !ok {
			continue
		}
		d.Misc = append(d.Misc, normalizeMisc(name, obj))
	}

	return d
}

func normalizeAlcohol(name string, obj map[string]any) AlcoholItem {
	qty, _ := number(obj["quantity"])
	qty = math.Max(0, qty)

	orig, ok := number(obj["originalQuantity"])
	if !ok || orig <= 0 {
		orig = qty
	}
	if orig <= 0 {
		orig = DefaultVolume
	}

	return AlcoholItem{Name: name, Quantity: qty, OriginalQuantity: orig}
}

func normalizeShisha(name string, obj map[string]any) ShishaItem {
	pack := positiveOr(obj["packSize"], DefaultPackSize)
	serve := positiveOr(obj["gramsPerServe"], DefaultGramsPerServe)

	remaining, ok := number(obj["gramsRemaining"])
	if !ok {
		// Older documents counted bowls instead of grams.
		if bowls, legacy := number(obj["quantity"]); legacy {
			remaining = bowls * serve
		}
	}

	return ShishaItem{
		Name:           name,
		PackSize:       pack,
		GramsPerServe:  serve,
		GramsRemaining: math.Max(0, remaining),
	}
}

func normalizeMisc(name string, obj map[string]any) MiscItem {
	qty, _ := number(obj["quantity"])
	return MiscItem{Name: name, Quantity: math.Max(0, qty)}
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if obj, ok := e.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func itemName(obj map[string]any) (string, bool) {
	s, ok := obj["name"].(string)
	if !ok {
		return "", false
	}
	s = normalizeName(s)
	return s, s != ""
}

func positiveOr(v any, def float64) float64 {
	if n, ok := number(v); ok && n > 0 {
		return n
	}
	return def
}

// number accepts JSON numbers and numeric strings. Non-finite values are
// rejected.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
