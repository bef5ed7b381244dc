package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRubricYAML = `
version: "1.0.0"
rubric:
  rubric_id: cli_rubric
  passing_threshold: 1
  criteria:
    - id: M1
      description: Answer is factually correct
      mandatory: true
    - id: C1
      description: Answer is concise
    - id: C2
      description: Answer cites sources
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	rubricPath := writeTestFile(t, t.TempDir(), "rubric.yaml", testRubricYAML)

	cmd := newValidateCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath})
	require.NoError(t, cmd.Execute())
}

func TestValidateCommand_BadDefinition(t *testing.T) {
	broken := writeTestFile(t, t.TempDir(), "rubric.yaml", `
version: "1.0.0"
rubric:
  rubric_id: broken
  passing_threshold: 5
  criteria:
    - id: C1
      description: only one cumulative criterion
`)

	cmd := newValidateCommand()
	cmd.SetArgs([]string{"--rubric", broken})
	require.Error(t, cmd.Execute())
}

func TestScoreCommand_AllPass(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	resultsPath := writeTestFile(t, dir, "results.json",
		`[{"M1": true, "C1": true, "C2": false}, {"M1": true, "C1": false, "C2": true}]`)

	cmd := newScoreCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--results", resultsPath})
	require.NoError(t, cmd.Execute())
}

func TestScoreCommand_FailureExitCode(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	resultsPath := writeTestFile(t, dir, "results.json",
		`[{"M1": true, "C1": true, "C2": true}, {"M1": false, "C1": true, "C2": true}]`)

	cmd := newScoreCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--results", resultsPath})
	err := cmd.Execute()
	require.Error(t, err)

	var ce cliError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, exitEvaluationFailed, ce.code)
	assert.Contains(t, ce.Error(), "1 result(s) failed")
}

func TestScoreCommand_SingleObjectAndStrict(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	resultsPath := writeTestFile(t, dir, "results.json",
		`{"M1": true, "C1": true, "C2": false, "extra": 1}`)

	cmd := newScoreCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--results", resultsPath})
	require.NoError(t, cmd.Execute(), "plain scoring tolerates extra keys")

	strict := newScoreCommand()
	strict.SetArgs([]string{"--rubric", rubricPath, "--results", resultsPath, "--strict"})
	require.Error(t, strict.Execute(), "strict scoring rejects extra keys")
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	resultsPath := writeTestFile(t, dir, "result.json",
		`{"M1": true, "M1_justification": "matches the reference", "C1": true, "C2": false}`)
	outPath := filepath.Join(dir, "report.md")

	cmd := newReportCommand()
	cmd.SetArgs([]string{
		"--rubric", rubricPath,
		"--results", resultsPath,
		"--title", "Run 12",
		"--out", outPath,
	})
	require.NoError(t, cmd.Execute())

	report, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "# Run 12")
	assert.Contains(t, string(report), "**Overall Result: PASS**")
	assert.Contains(t, string(report), "matches the reference")
}

func TestAlignCommand(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	leftPath := writeTestFile(t, dir, "left.json",
		`[{"M1": true, "C1": true, "C2": false}, {"M1": false, "C1": false, "C2": false}]`)
	rightPath := writeTestFile(t, dir, "right.json",
		`[{"M1": true, "C1": false, "C2": true}, {"M1": true, "C1": true, "C2": true}]`)

	cmd := newAlignCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--left", leftPath, "--right", rightPath})
	require.NoError(t, cmd.Execute())
}

func TestAlignCommand_LengthMismatch(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	leftPath := writeTestFile(t, dir, "left.json",
		`[{"M1": true, "C1": true, "C2": false}]`)
	rightPath := writeTestFile(t, dir, "right.json",
		`[{"M1": true, "C1": true, "C2": false}, {"M1": true, "C1": true, "C2": false}]`)

	cmd := newAlignCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--left", leftPath, "--right", rightPath})
	require.Error(t, cmd.Execute())
}

func TestSchemaCommand(t *testing.T) {
	dir := t.TempDir()
	rubricPath := writeTestFile(t, dir, "rubric.yaml", testRubricYAML)
	outPath := filepath.Join(dir, "schema.json")

	cmd := newSchemaCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath, "--out", outPath})
	require.NoError(t, cmd.Execute())

	schema, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"M1"`)
	assert.Contains(t, string(schema), `"M1_justification"`)
	assert.Contains(t, string(schema), `"required"`)
}

func TestPromptCommand(t *testing.T) {
	rubricPath := writeTestFile(t, t.TempDir(), "rubric.yaml", testRubricYAML)

	cmd := newPromptCommand()
	cmd.SetArgs([]string{"--rubric", rubricPath})
	require.NoError(t, cmd.Execute())
}

func TestReadResults(t *testing.T) {
	dir := t.TempDir()

	single := writeTestFile(t, dir, "single.json", `{"M1": true}`)
	payloads, err := readResults(single)
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	many := writeTestFile(t, dir, "many.json", `[{"M1": true}, {"M1": false}]`)
	payloads, err = readResults(many)
	require.NoError(t, err)
	require.Len(t, payloads, 2)

	_, err = readResults(filepath.Join(dir, "absent.json"))
	require.Error(t, err)
}
