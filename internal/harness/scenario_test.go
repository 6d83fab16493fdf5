package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	content := `
name: test_scenario
description: "Test scenario for validation"
course: crypto-foundations
completed: [l1-1]
steps:
  - mark: l1-2
  - quiz: {lesson: l1-3, answers: [1, 2, 2]}
  - expect:
      start: l2-1
      percent: 42.857142857142854
      next_of: {l3-2: ""}
assertions:
  - type: trace_contains
    action: mark
`
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "crypto-foundations", scenario.Course)
	assert.Equal(t, []string{"l1-1"}, scenario.Completed)
	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, "l1-2", scenario.Steps[0].Mark)
	assert.Equal(t, []int{1, 2, 2}, scenario.Steps[1].Quiz.Answers)
	require.NotNil(t, scenario.Steps[2].Expect.Percent)
	assert.InDelta(t, 42.857142857142854, *scenario.Steps[2].Expect.Percent, 1e-12)
	assert.Equal(t, map[string]string{"l3-2": ""}, scenario.Steps[2].Expect.NextOf)
	assert.Nil(t, scenario.Steps[2].Expect.Completed)
}

func TestParseScenario_EmptyListIsChecked(t *testing.T) {
	content := `
name: s
description: d
course: c
steps:
  - expect:
      completed: []
`
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	assert.NotNil(t, scenario.Steps[0].Expect.Completed)
	assert.Empty(t, scenario.Steps[0].Expect.Completed)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\ncourse: c\nsteps: [{mark: a}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\ncourse: c\nsteps: [{mark: a}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing course",
			content: "name: n\ndescription: d\nsteps: [{mark: a}]\n",
			wantErr: "course is required",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\ncourse: c\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions in one step",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{mark: a, toggle: b}]\n",
			wantErr: "steps[0]: exactly one of",
		},
		{
			name:    "empty step",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{}]\n",
			wantErr: "steps[0]: exactly one of",
		},
		{
			name:    "quiz without lesson",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{quiz: {answers: [1]}}]\n",
			wantErr: "steps[0].quiz: lesson is required",
		},
		{
			name:    "unknown store state",
			content: "name: n\ndescription: d\ncourse: c\nstore: flaky\nsteps: [{mark: a}]\n",
			wantErr: `unknown store state "flaky"`,
		},
		{
			name:    "unknown field",
			content: "name: n\ndescription: d\ncourse: c\nstep: [{mark: a}]\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{mark: a}]\nassertions: [{type: trace_magic}]\n",
			wantErr: `unknown assertion type "trace_magic"`,
		},
		{
			name:    "trace_order without actions",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{mark: a}]\nassertions: [{type: trace_order}]\n",
			wantErr: "actions list is required",
		},
		{
			name:    "final_state without sets",
			content: "name: n\ndescription: d\ncourse: c\nsteps: [{mark: a}]\nassertions: [{type: final_state}]\n",
			wantErr: "completed or stored is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	content := "name: n\ndescription: d\ncourse: c\ncatalog: nowhere.yaml\nsteps: [{mark: a}]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog file not found")
}
