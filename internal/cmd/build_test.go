package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/output"
)

func decodeDocument(t *testing.T, data string) job.Document {
	t.Helper()
	require.NoError(t, job.ValidateDocumentJSON([]byte(data)))
	var doc job.Document
	require.NoError(t, json.Unmarshal([]byte(data), &doc))
	return doc
}

func readRecords(t *testing.T, data string) []output.Record {
	t.Helper()
	var records []output.Record
	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		var rec output.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	return records
}

func TestBuild_DefaultRecipe(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "build")
	require.NoError(t, err)

	doc := decodeDocument(t, out)
	assert.Equal(t, job.DocumentVersion, doc.Version)
	assert.Equal(t, "UParTEvaluation", doc.Process)
	assert.Equal(t, "upart-standalone", doc.Recipe)
	assert.Equal(t, 1000, doc.Source.MaxEvents)
	assert.Equal(t, "130X_mcRun3_2022_realistic_v5", doc.Conditions.Tag)
	require.Len(t, doc.Schedule, 1)
	require.Len(t, doc.Schedule[0].Modules, 1)
	assert.Equal(t, "UParTEvaluator", doc.Schedule[0].Modules[0].Type)
}

func TestBuild_ArgumentsOverrideDefaults(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "build",
		"inputFiles=file:/data/a.root,file:/data/b.root",
		"maxEvents=-1",
		"jetPtMin=30",
		"conditionsOverrides=JetCorrectionsRecord=Summer22_V1_MC_AK4PFPuppi",
	)
	require.NoError(t, err)

	doc := decodeDocument(t, out)
	assert.Equal(t, []string{"file:/data/a.root", "file:/data/b.root"}, doc.Source.URIs)
	assert.Equal(t, -1, doc.Source.MaxEvents)
	assert.EqualValues(t, 30, doc.Schedule[0].Modules[0].Params["jetPtMin"])
	assert.Equal(t, map[string]string{"JetCorrectionsRecord": "Summer22_V1_MC_AK4PFPuppi"}, doc.Conditions.Overrides)
}

func TestBuild_MinimalRecipeYAML(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "build", "--recipe", "upart-minimal", "--format", "yaml")
	require.NoError(t, err)

	var doc job.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "UParTTest", doc.Process)
	assert.Equal(t, 10, doc.Source.MaxEvents)
}

func TestBuild_ParamsFilesLayerUnderArgs(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "base.yaml")
	second := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(first, []byte("maxEvents: 50\noutputFile: base.root\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("maxEvents: 75\n"), 0644))

	out, _, err := run(t, "build", "--params", first, "--params", second, "outputFile=cli.root")
	require.NoError(t, err)

	doc := decodeDocument(t, out)
	assert.Equal(t, 75, doc.Source.MaxEvents)
	assert.Equal(t, "cli.root", doc.Parameters["outputFile"])
}

func TestBuild_JSONL(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "build", "--format", "jsonl", "maxEvents=5")
	require.NoError(t, err)

	records := readRecords(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, output.TypeJob, records[0].Type)
	assert.Equal(t, output.TypeSummary, records[1].Type)
	assert.Equal(t, records[0].JobID, records[1].JobID)
	assert.Equal(t, "upart-standalone", records[0].Recipe)

	var jobRec output.JobRecord
	require.NoError(t, json.Unmarshal(records[0].Data, &jobRec))
	assert.Len(t, jobRec.Fingerprint, 64)
	assert.Equal(t, 5, jobRec.Document.Source.MaxEvents)

	var sum output.SummaryRecord
	require.NoError(t, json.Unmarshal(records[1].Data, &sum))
	assert.Equal(t, 1, sum.Inputs)
	assert.Equal(t, 1, sum.Modules)
	assert.Equal(t, []string{"maxEvents"}, sum.ExplicitParameters)
}

func TestBuild_JSONLErrorRecord(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "build", "--format", "jsonl", "bogus=1")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))

	records := readRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, output.TypeError, records[0].Type)

	var rec output.ErrorRecord
	require.NoError(t, json.Unmarshal(records[0].Data, &rec))
	assert.Equal(t, output.ErrCodeUnknownParameter, rec.Code)
	assert.Equal(t, "bogus", rec.Parameter)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "unknown recipe", args: []string{"build", "--recipe", "nope"}, wantCode: foundry.ExitInvalidArgument},
		{name: "bad format", args: []string{"build", "--format", "toml"}, wantCode: foundry.ExitInvalidArgument},
		{name: "malformed argument", args: []string{"build", "maxEvents"}, wantCode: foundry.ExitInvalidArgument},
		{name: "type coercion", args: []string{"build", "maxEvents=many"}, wantCode: foundry.ExitInvalidArgument},
		{name: "empty source", args: []string{"build", "inputFiles="}, wantCode: foundry.ExitInvalidArgument},
		{name: "bad threshold", args: []string{"build", "logThreshold=LOUD"}, wantCode: foundry.ExitInvalidArgument},
		{name: "missing params file", args: []string{"build", "--params", "/nonexistent/params.yaml"}, wantCode: foundry.ExitFileNotFound},
		{name: "missing list file", args: []string{"build", "inputFiles_load=/nonexistent/files.txt"}, wantCode: foundry.ExitFileNotFound},
		{name: "missing catalog", args: []string{"build", "--conditions-catalog", "/nonexistent/catalog.yaml"}, wantCode: foundry.ExitFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
		})
	}
}

func TestBuild_ConditionsCatalog(t *testing.T) {
	isolate(t)
	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("tags:\n  130X_mcRun3_2022_realistic_v5:\n    JetTagComputerRecord: v5\n"), 0644))

	_, _, err := run(t, "build", "--conditions-catalog", catalog)
	require.NoError(t, err)

	_, _, err = run(t, "build", "--conditions-catalog", catalog, "globalTag=140X_unknown_v1")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))
}

func TestBuild_OutputFileAndSummary(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "job.json")

	out, stderr, err := run(t, "build", "--output", path, "--summary")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "UParTEvaluation configuration")
	assert.Contains(t, stderr, "Max events: 1000")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := decodeDocument(t, string(data))
	assert.Equal(t, "UParTEvaluation", doc.Process)
}

func TestBuild_SaveAndJobs(t *testing.T) {
	storeDir := isolate(t)

	_, _, err := run(t, "build", "--save", "maxEvents=42")
	require.NoError(t, err)
	_, _, err = run(t, "build", "--save", "maxEvents=42")
	require.NoError(t, err)

	entries, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "identical jobs share one entry")
	fingerprint := entries[0].Name()

	out, _, err := run(t, "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, fingerprint[:12])
	assert.Contains(t, out, "upart-standalone")

	out, _, err = run(t, "jobs", "list", "--json")
	require.NoError(t, err)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, fingerprint, listed[0]["fingerprint"])

	out, _, err = run(t, "jobs", "show", fingerprint[:8])
	require.NoError(t, err)
	doc := decodeDocument(t, out)
	assert.Equal(t, 42, doc.Source.MaxEvents)

	out, _, err = run(t, "jobs", "show", "--format", "yaml", fingerprint)
	require.NoError(t, err)
	assert.Contains(t, out, "max_events: 42")

	_, _, err = run(t, "jobs", "rm", fingerprint[:8])
	require.NoError(t, err)

	_, _, err = run(t, "jobs", "show", fingerprint)
	require.Error(t, err)
	assert.Equal(t, foundry.ExitFileNotFound, ExitCode(err))
}

func TestJobs_ListEmpty(t *testing.T) {
	isolate(t)

	out, stderr, err := run(t, "jobs", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "No jobs found")
}

func TestBuild_FailureLeavesOutputUntouched(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "job.json")

	_, _, err := run(t, "build", "--output", path)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	tests := []struct {
		name string
		args []string
	}{
		{name: "empty source", args: []string{"inputFiles="}},
		{name: "unknown parameter", args: []string{"bogus=1"}},
		{name: "jsonl error", args: []string{"--format", "jsonl", "maxEvents=ten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"build", "--output", path}, tt.args...)
			_, _, err := run(t, args...)
			require.Error(t, err)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files left behind")
		})
	}
}

func TestBuild_JSONLErrorWithOutputGoesToStdout(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "job.jsonl")

	out, _, err := run(t, "build", "--format", "jsonl", "--output", path, "inputFiles=")
	require.Error(t, err)

	records := readRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, output.TypeError, records[0].Type)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteDestination_WriterError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	err := writeDestination(buildCmd, path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encode failed")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}
