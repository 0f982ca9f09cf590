package fundlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexString is a string that also accepts a single-element JSON array, as
// sent by editors that wrap every cell in a list. Null, empty arrays and
// non-string payloads decode to "".
type FlexString string

// UnmarshalJSON accepts "x" or ["x"].
func (s *FlexString) UnmarshalJSON(data []byte) error {
	raw, ok := unwrapSingleton(data)
	if !ok {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		*s = ""
		return nil
	}
	*s = FlexString(v)
	return nil
}

// FlexFloat is a number that also accepts a numeric string or a
// single-element JSON array. Anything else decodes to NaN, which marks the
// value invalid.
type FlexFloat float64

// UnmarshalJSON accepts 1.5, "1.5", [1.5] or ["1.5"].
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	raw, ok := unwrapSingleton(data)
	if !ok {
		*f = FlexFloat(math.NaN())
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = FlexFloat(v)
			return nil
		}
	}
	*f = FlexFloat(math.NaN())
	return nil
}

// unwrapSingleton returns the scalar payload inside data, unwrapping one
// level of array. It reports false for null, empty or multi-element arrays.
func unwrapSingleton(data []byte) (json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, false
	}
	if data[0] != '[' {
		return data, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) != 1 {
		return nil, false
	}
	inner := bytes.TrimSpace(items[0])
	if len(inner) == 0 || inner[0] == '[' || bytes.Equal(inner, []byte("null")) {
		return nil, false
	}
	return inner, true
}

// HoldingInput is the loose holding shape accepted at ingestion boundaries
// (HTTP payloads, legacy files, mobile bindings).
type HoldingInput struct {
	Code     FlexString `json:"code"`
	Quantity FlexFloat  `json:"quantity"`
}

// NewHoldingInput builds an input from plain values.
func NewHoldingInput(code string, quantity float64) HoldingInput {
	return HoldingInput{Code: FlexString(code), Quantity: FlexFloat(quantity)}
}

// NormalizeHolding canonicalizes an input. It reports false when the code is
// blank or the quantity is not a finite positive number.
func NormalizeHolding(in HoldingInput) (Holding, bool) {
	code := normalizeCode(string(in.Code))
	if code == "" {
		return Holding{}, false
	}
	qty := float64(in.Quantity)
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return Holding{}, false
	}
	return Holding{Code: code, Quantity: qty}, true
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateHolding(code string, quantity float64) (Holding, error) {
	h, ok := NormalizeHolding(NewHoldingInput(code, quantity))
	if !ok {
		return Holding{}, NewError(ErrCodeInvalidInput, fmt.Sprintf("invalid holding %q with quantity %v", code, quantity))
	}
	return h, nil
}
