package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/sigflow/pkg/api"
)

func TestEvalBool(t *testing.T) {
	e := NewEvaluator()
	sig := api.NewSignal("order.created", "hello")

	ok, err := e.EvalBool(`type == "order.created"`, sig, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.EvalBool(`len(data) > 10`, sig, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalBoolRejectsNonBoolean(t *testing.T) {
	e := NewEvaluator()
	_, err := e.EvalBool(`len(data)`, api.NewSignal("x", "abc"), nil)
	require.ErrorContains(t, err, "must return a boolean")
}

func TestEvalSeesStateAndMeta(t *testing.T) {
	e := NewEvaluator()
	sig := api.Derive(api.NewSignal("parent", nil), "child", nil)
	state := api.State{"retries": 2}

	ok, err := e.EvalBool(`state.retries < 3 && meta.correlation_id != ""`, sig, state)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalValueTransforms(t *testing.T) {
	e := NewEvaluator()

	out, err := e.EvalValue(`upper(data) + "!"`, api.NewSignal("x", "hey"), nil)
	require.NoError(t, err)
	require.Equal(t, "HEY!", out)
}

func TestEvalUndefinedVariablesAreNil(t *testing.T) {
	e := NewEvaluator()

	ok, err := e.EvalBool(`mystery == nil`, api.NewSignal("x", nil), nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalCompileErrorsSurface(t *testing.T) {
	e := NewEvaluator()
	_, err := e.EvalValue(`data +`, api.NewSignal("x", nil), nil)
	require.ErrorContains(t, err, "compile expression")
}

func TestEvalCachesPrograms(t *testing.T) {
	e := NewEvaluator()
	sig := api.NewSignal("x", 1)

	_, err := e.EvalBool(`data == 1`, sig, nil)
	require.NoError(t, err)
	require.Len(t, e.cache, 1)

	_, err = e.EvalBool(`data == 1`, sig, nil)
	require.NoError(t, err)
	require.Len(t, e.cache, 1)
}
