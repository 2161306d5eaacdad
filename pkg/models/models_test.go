package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinding_UnmarshalReference(t *testing.T) {
	var b Binding

	require.NoError(t, json.Unmarshal([]byte(`{"node":"load","port":"result"}`), &b))
	require.True(t, b.IsRef())
	assert.Equal(t, "load", b.Ref.Node)
	assert.Equal(t, "result", b.Ref.Port)
}

func TestBinding_UnmarshalLiterals(t *testing.T) {
	cases := map[string]any{
		`"iris"`:          "iris",
		`42`:              42.0,
		`true`:            true,
		`["mean","sum"]`:  []any{"mean", "sum"},
		`{"a":1}`:         map[string]any{"a": 1.0},
		`{"node":"x"}`:    map[string]any{"node": "x"}, // missing port: not a reference
		`null`:            nil,
	}

	for raw, want := range cases {
		var b Binding

		require.NoError(t, json.Unmarshal([]byte(raw), &b), raw)
		assert.False(t, b.IsRef(), raw)
		assert.Equal(t, want, b.Literal, raw)
	}
}

func TestBinding_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		`{"node":"a","port":"out"}`,
		`"literal"`,
		`3.5`,
	} {
		var b Binding

		require.NoError(t, json.Unmarshal([]byte(raw), &b))

		out, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestGraph_UnmarshalAssignsIDs(t *testing.T) {
	raw := `{
		"load": {"type": "sampledata", "inputs": {"dataset": "iris"}},
		"show": {"type": "display", "inputs": {"output1": {"node": "load", "port": "result"}}}
	}`

	var g Graph

	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	require.Len(t, g, 2)
	assert.Equal(t, "load", g["load"].ID)
	assert.Equal(t, "show", g["show"].ID)
	assert.True(t, g["show"].Inputs["output1"].IsRef())
}

func TestGraph_ValidateFlagsDanglingReferences(t *testing.T) {
	g := Graph{
		"a": {ID: "a", Type: "sampledata", Inputs: map[string]Binding{
			"dataset": LiteralBinding("iris"),
		}},
		"b": {ID: "b", Type: "display", Inputs: map[string]Binding{
			"output1": RefBinding("ghost", "result"),
		}},
	}

	errs := g.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "ghost")
}

func TestExecutionResult_Constructors(t *testing.T) {
	ok := NewSuccessResult("n1", "sampledata", 7)
	assert.Equal(t, NodeStatusSuccess, ok.Status)
	assert.Equal(t, 7, ok.Result)
	assert.Nil(t, ok.Error)
	assert.False(t, ok.Failed())

	bad := NewErrorResult("n2", "display", KindOperationError, "boom")
	assert.True(t, bad.Failed())
	assert.Nil(t, bad.Result)
	require.NotNil(t, bad.Error)
	assert.Equal(t, KindOperationError, bad.Error.Kind)
	assert.Equal(t, "OperationError: boom", bad.Error.Error())
}

func TestExecutionResult_JSONShape(t *testing.T) {
	out, err := json.Marshal(NewErrorResult("n", "display", KindUpstreamFailure, "upstream node failed"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"display","status":"error","error":{"kind":"UpstreamFailureError","message":"upstream node failed"}}`, string(out))

	out, err = json.Marshal(NewSuccessResult("n", "sampledata", map[string]any{"rows": 3.0}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sampledata","status":"success","result":{"rows":3}}`, string(out))
}
