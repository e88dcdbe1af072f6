package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_YAMLKeepsIntegers(t *testing.T) {
	var out bytes.Buffer
	p := &printer{w: &out, format: "yaml"}

	err := p.print(map[string]any{
		"createdAt": int64(1700000000123),
		"lag":       5,
		"ratio":     0.5,
		"nested":    []any{map[string]any{"time": int64(1700000000456)}},
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "createdAt: 1700000000123\n")
	assert.Contains(t, out.String(), "lag: 5\n")
	assert.Contains(t, out.String(), "ratio: 0.5\n")
	assert.Contains(t, out.String(), "time: 1700000000456\n")
	assert.NotContains(t, out.String(), "e+12")
}

func TestPrinter_JSON(t *testing.T) {
	var out bytes.Buffer
	p := &printer{w: &out, format: "json"}

	require.NoError(t, p.done("cancel", "msg_1"))
	assert.JSONEq(t, `{"status":"ok","action":"cancel","id":"msg_1"}`, out.String())
}
