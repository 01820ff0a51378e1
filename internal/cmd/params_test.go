package cmd

import (
	"encoding/json"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gojobcfg/pkg/param"
)

func TestParamsCommand(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "params")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "inputFiles")
	assert.Contains(t, out, "list<string>")
	assert.Contains(t, out, "DEBUG|INFO|WARNING|ERROR")
}

func TestParamsCommand_Filter(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "params", "--recipe", "upart-minimal", "--json", "jet*")
	require.NoError(t, err)

	var listed []paramListing
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	names := make([]string, 0, len(listed))
	for _, l := range listed {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"jetPtMin", "jetEtaMax"}, names)
	assert.EqualValues(t, 15, listed[0].Default)
}

func TestParamsCommand_NoMatch(t *testing.T) {
	isolate(t)

	out, stderr, err := run(t, "params", "zzz*")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "No parameters match")
}

func TestParamsCommand_Errors(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "params", "[")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))

	_, _, err = run(t, "params", "--recipe", "nope")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))
}

func TestFormatDefault(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "-"},
		{name: "string", in: "INFO", want: "INFO"},
		{name: "empty string", in: "", want: `""`},
		{name: "int", in: 100, want: "100"},
		{name: "float", in: 2.4, want: "2.4"},
		{name: "string list", in: []string{"a", "b"}, want: "a,b"},
		{name: "empty list", in: []string{}, want: "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDefault(tt.in))
		})
	}
}

func TestParamNames(t *testing.T) {
	specs := []param.Spec{{Name: param.MaxEvents}, {Name: param.InputFiles}}
	assert.Equal(t, []string{"maxEvents=", "inputFiles="}, paramNames(specs))
}

func TestRecipesCommand(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "upart-minimal")
	assert.Contains(t, out, "upart-standalone")
	assert.Contains(t, out, "UParTEvaluation")

	out, _, err = run(t, "recipes", "--json")
	require.NoError(t, err)
	var listed []recipeListing
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "upart-minimal", listed[0].Name)
	assert.Equal(t, 10, listed[0].Parameters)
}

func TestModulesCommand(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "modules")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "UParTEvaluator")
	assert.Contains(t, out, "jets,pfCandidates")
	assert.Contains(t, out, "modelPath:string")

	out, _, err = run(t, "modules", "--json")
	require.NoError(t, err)
	var listed []moduleListing
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "UParTEvaluator", listed[0].Type)
	require.Len(t, listed[0].Slots, 2)
	assert.Equal(t, slotListing{Name: "jets", Required: true, Default: "slimmedJets"}, listed[0].Slots[0])
	require.Len(t, listed[0].Params, 3)
	assert.Equal(t, "jetPtMin", listed[0].Params[1].Name)
	assert.Equal(t, "float", listed[0].Params[1].Type)
	assert.Equal(t, 20.0, listed[0].Params[1].Default)
}
