package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kind  OutputKind
		items int
		empty bool
		isNil bool
	}{
		{name: "null", raw: `null`, isNil: true, empty: true},
		{name: "absent", raw: ``, isNil: true, empty: true},
		{name: "url list", raw: `["https://a/0.webp","https://a/1.webp"]`, kind: OutputList, items: 2},
		{name: "empty list", raw: `[]`, kind: OutputList, empty: true},
		{name: "caption", raw: `"a cat on a sofa"`, kind: OutputSingle, items: 1},
		{name: "empty caption", raw: `""`, kind: OutputSingle, items: 1, empty: true},
		{name: "mesh object", raw: `{"mesh":"https://a/m.glb","format":"glb"}`, kind: OutputSingle, items: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseOutput(json.RawMessage(tt.raw))
			require.NoError(t, err)
			if tt.isNil {
				assert.Nil(t, out)
				assert.True(t, out.IsEmpty())
				return
			}
			assert.Equal(t, tt.kind, out.Kind())
			assert.Len(t, out.Items(), tt.items)
			assert.Equal(t, tt.empty, out.IsEmpty())
		})
	}

	_, err := ParseOutput(json.RawMessage(`{broken`))
	assert.Error(t, err)
}

func TestOutputPreservesProviderShape(t *testing.T) {
	for _, raw := range []string{
		`["https://a/0.webp"]`,
		`"caption"`,
		`{"mesh":"https://a/m.glb"}`,
	} {
		out, err := ParseOutput(json.RawMessage(raw))
		require.NoError(t, err)
		encoded, err := json.Marshal(out)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(encoded))

		var back Output
		require.NoError(t, json.Unmarshal(encoded, &back))
		assert.Equal(t, out.Kind(), back.Kind())
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusQueued.CanTransitionTo(StatusRunning))
	assert.True(t, StatusRunning.CanTransitionTo(StatusSucceeded))
	assert.True(t, StatusQueued.CanTransitionTo(StatusCanceled))
	assert.False(t, StatusRunning.CanTransitionTo(StatusQueued))
	assert.False(t, StatusSucceeded.CanTransitionTo(StatusFailed))
	assert.True(t, StatusFailed.CanTransitionTo(StatusFailed))

	assert.False(t, Status("starting").IsValid())
	for _, s := range []Status{StatusSucceeded, StatusFailed, StatusCanceled} {
		assert.True(t, s.IsTerminal())
	}
	assert.False(t, StatusRunning.IsTerminal())
}
