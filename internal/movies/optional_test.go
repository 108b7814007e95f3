package movies

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	v, ok := Some("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.False(t, None[string]().Present())

	b, err := json.Marshal(struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
	}{Some("tagline"), None[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "tagline", "b": null}`, string(b))

	var back struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Some("tagline"), back.A)
	assert.False(t, back.B.Present())
}
