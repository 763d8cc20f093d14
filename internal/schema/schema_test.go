// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type scaleParams struct {
	P      point    `json:"p"`
	Factor int      `json:"factor"`
	Label  *string  `json:"label,omitempty"`
	Names  []string `json:"names,omitempty"`
}

func mustSchema(t *testing.T, v any) *Schema {
	t.Helper()

	s, err := New(reflect.TypeOf(v))
	require.NoError(t, err)
	return s
}

func TestSchema_Validate(t *testing.T) {
	t.Run("accepts a conforming object", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": {"x": 1, "y": 2}, "factor": 3}`))
		assert.Nil(t, issues)
	})

	t.Run("optional fields may be absent or present", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{
			"p": {"x": 1, "y": 2},
			"factor": 3,
			"label": "a",
			"names": ["b", "c"]
		}`))
		assert.Nil(t, issues)
	})

	t.Run("reports a missing required field", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": {"x": 1, "y": 2}}`))
		require.IsType(t, map[string]any{}, issues)
		assert.Equal(t, []string{"missing required field"}, issues.(map[string]any)["factor"])
	})

	t.Run("nests complaints under the field path", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": {"x": 1, "y": "oops"}, "factor": 3}`))
		require.IsType(t, map[string]any{}, issues)

		p := issues.(map[string]any)["p"].(map[string]any)
		assert.Equal(t, []string{"expected integer, got string"}, p["y"])
	})

	t.Run("rejects a non-object parameter value", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": 1, "factor": 3}`))
		require.IsType(t, map[string]any{}, issues)
		assert.Equal(t, []string{"expected object, got number"}, issues.(map[string]any)["p"])
	})

	t.Run("flags unknown fields", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": {"x": 1, "y": 2}, "factor": 3, "bogus": 1}`))
		require.IsType(t, map[string]any{}, issues)
		assert.Equal(t, []string{"unknown field"}, issues.(map[string]any)["bogus"])
	})

	t.Run("validates array elements by index", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{
			"p": {"x": 1, "y": 2},
			"factor": 3,
			"names": ["ok", 7]
		}`))
		require.IsType(t, map[string]any{}, issues)

		names := issues.(map[string]any)["names"].(map[string]any)
		assert.Equal(t, []string{"expected string, got number"}, names["1"])
	})

	t.Run("distinguishes integers from numbers", func(t *testing.T) {
		s := mustSchema(t, scaleParams{})

		issues := s.Validate(json.RawMessage(`{"p": {"x": 1, "y": 2}, "factor": 3.5}`))
		require.IsType(t, map[string]any{}, issues)
		assert.Equal(t, []string{"expected integer, got number"}, issues.(map[string]any)["factor"])
	})

	t.Run("maps allow arbitrary keys", func(t *testing.T) {
		s := mustSchema(t, map[string]int{})

		assert.Nil(t, s.Validate(json.RawMessage(`{"anything": 1}`)))

		issues := s.Validate(json.RawMessage(`{"anything": "nope"}`))
		require.IsType(t, map[string]any{}, issues)
		assert.Equal(t, []string{"expected integer, got string"}, issues.(map[string]any)["anything"])
	})
}

func TestSchema_RoundTrip(t *testing.T) {
	t.Run("encode then decode preserves the value", func(t *testing.T) {
		s := mustSchema(t, point{})

		original := point{X: 3, Y: 6}
		raw, err := s.Encode(original)
		require.NoError(t, err)

		require.Nil(t, s.Validate(raw))

		var decoded point
		require.NoError(t, s.Decode(raw, &decoded))
		assert.Equal(t, original, decoded)
	})
}

func TestEnvelopeDocs(t *testing.T) {
	t.Run("success envelope splices in the result schema", func(t *testing.T) {
		result := mustSchema(t, point{})

		doc, err := SuccessEnvelopeDoc(result)
		require.NoError(t, err)

		raw, err := json.Marshal(doc)
		require.NoError(t, err)

		var def map[string]any
		require.NoError(t, json.Unmarshal(raw, &def))

		props := def["properties"].(map[string]any)
		assert.Contains(t, props, "jsonrpc")
		assert.Contains(t, props, "id")

		resultDef := props["result"].(map[string]any)
		resultProps := resultDef["properties"].(map[string]any)
		assert.Contains(t, resultProps, "x")
		assert.Contains(t, resultProps, "y")
	})

	t.Run("request and error envelopes reflect cleanly", func(t *testing.T) {
		_, err := RequestEnvelopeDoc()
		require.NoError(t, err)

		_, err = ErrorEnvelopeDoc()
		require.NoError(t, err)
	})
}
