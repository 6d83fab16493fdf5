package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/braincrumbs/internal/config"
	"github.com/roach88/braincrumbs/internal/store"
)

const tinyCatalog = `courses:
  - id: t1
    slug: tiny
    title: Tiny Course
    description: Two lessons and an empty quiz.
    level: Advanced
    duration: 5m
    modules:
      - id: tm1
        title: Only Module
        lessons:
          - id: t-1
            title: Reading
            type: text
            content: Hello.
          - id: t-2
            title: Empty Quiz
            type: quiz
`

// testOptions returns options backed by a fresh SQLite file and the
// embedded catalog.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format: format,
		Config: &config.Config{
			DatabaseType: config.DatabaseSQLite,
			DatabasePath: filepath.Join(t.TempDir(), "crumbs.db"),
			LogLevel:     "info",
		},
	}
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData unmarshals a JSON CLIResponse's data into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	if v != nil {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return raw.CLIResponse
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCoursesListsCatalog(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewCoursesCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "crypto-foundations")
	assert.Contains(t, out, "Crypto Foundations [Beginner, 4h 30m] 0%")
	assert.Contains(t, out, "thinking-in-systems")
}

func TestCoursesShowsProgress(t *testing.T) {
	opts := testOptions(t, "json")

	_, err := execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	out, err := execute(NewCoursesCommand(opts))
	require.NoError(t, err)

	var summaries []CourseSummary
	resp := decodeData(t, out, &summaries)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, summaries, 2)
	assert.Equal(t, "crypto-foundations", summaries[0].Slug)
	assert.Equal(t, 7, summaries[0].Lessons)
	assert.Equal(t, 1, summaries[0].Completed)
	assert.Equal(t, 14, summaries[0].Percent)
	assert.Equal(t, 0, summaries[1].Percent)
}

func TestCoursesSearch(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewCoursesCommand(opts), "--search", "feedback loops")
	require.NoError(t, err)

	var summaries []CourseSummary
	decodeData(t, out, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "thinking-in-systems", summaries[0].Slug)
}

func TestCoursesLevelFilter(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewCoursesCommand(opts), "--level", "intermediate")
	require.NoError(t, err)
	assert.Contains(t, out, "thinking-in-systems")
	assert.NotContains(t, out, "crypto-foundations")

	out, err = execute(NewCoursesCommand(opts), "--level", "advanced")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses found.")
}

func TestCoursesSearchAndLevel(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewCoursesCommand(opts), "--search", "this course", "--level", "Beginner")
	require.NoError(t, err)

	var summaries []CourseSummary
	decodeData(t, out, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "crypto-foundations", summaries[0].Slug)

	out, err = execute(NewCoursesCommand(opts), "--search", "   ")
	require.NoError(t, err)
	decodeData(t, out, &summaries)
	assert.Len(t, summaries, 2)
}

func TestCoursesUnknownLevel(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewCoursesCommand(opts), "--level", "expert")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E202]")
}

func TestCoursesCustomCatalog(t *testing.T) {
	opts := testOptions(t, "text")
	opts.Config.CatalogPath = writeCatalog(t, tinyCatalog)

	out, err := execute(NewCoursesCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "tiny")
	assert.NotContains(t, out, "crypto-foundations")
}

func TestCoursesMissingCatalog(t *testing.T) {
	opts := testOptions(t, "text")
	opts.Config.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

	out, err := execute(NewCoursesCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestShowOverview(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewShowCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "Crypto Foundations [Beginner, 4h 30m]")
	assert.Contains(t, out, "Progress: 0/7 lessons (0%)")
	assert.Contains(t, out, "Start Course: l1-1")
	assert.Contains(t, out, "Module 1: The History of Money")
	assert.NotContains(t, out, "✓")

	_, err = execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	out, err = execute(NewShowCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ l1-1")
	assert.Contains(t, out, "Continue Learning: l1-2")
	assert.Contains(t, out, "Progress: 1/7 lessons (14%)")
}

func TestShowLesson(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewShowCommand(opts), "crypto-foundations", "--lesson", "l1-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Crypto Foundations › Module 1: The History of Money")
	assert.Contains(t, out, "The Double Spend Problem (text) [Mark as Complete]")
	assert.Contains(t, out, "double-spending problem")
	assert.Contains(t, out, "Next: l1-3")
}

func TestShowLastLesson(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewShowCommand(opts), "crypto-foundations", "--lesson", "l3-2")
	require.NoError(t, err)
	assert.Contains(t, out, "End of course")
}

func TestShowStaleLessonFallsBackToOverview(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewShowCommand(opts), "crypto-foundations", "--lesson", "no-such-lesson")
	require.NoError(t, err)

	var ov OverviewView
	decodeData(t, out, &ov)
	assert.Equal(t, "overview", ov.View)
	assert.Equal(t, "l1-1", ov.StartLesson)
	assert.Equal(t, labelStart, ov.StartLabel)
	require.Len(t, ov.Modules, 3)
}

func TestShowQuizLessonJSON(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewShowCommand(opts), "crypto-foundations", "--lesson", "l1-3")
	require.NoError(t, err)

	var lv LessonView
	decodeData(t, out, &lv)
	assert.Equal(t, "lesson", lv.View)
	assert.Equal(t, "quiz", lv.Type)
	assert.Equal(t, 3, lv.Questions)
	assert.Equal(t, "l2-1", lv.Next)
	assert.False(t, lv.Completed)
}

func TestShowUnknownCourse(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewShowCommand(opts), "no-such-course")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCourseNotFound, resp.Error.Code)
}

func TestStartFallsBackToFirstLessonWhenAllComplete(t *testing.T) {
	opts := testOptions(t, "json")

	for _, id := range []string{"sys-l1", "sys-l2"} {
		_, err := execute(NewCompleteCommand(opts), "thinking-in-systems", id)
		require.NoError(t, err)
	}

	out, err := execute(NewStartCommand(opts), "thinking-in-systems")
	require.NoError(t, err)

	var result StartResult
	decodeData(t, out, &result)
	assert.Equal(t, labelContinue, result.Label)
	assert.Equal(t, "sys-l1", result.Lesson)
	assert.Equal(t, "Stocks and Flows", result.Title)
}

func TestNextMarksCurrentLesson(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewNextCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ l1-1 completed (14%)")
	assert.Contains(t, out, "Next: l1-2 The Double Spend Problem")

	out, err = execute(NewStartCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "Continue Learning: l1-2")
}

func TestNextPeekDoesNotMark(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewNextCommand(opts), "crypto-foundations", "l1-2", "--peek")
	require.NoError(t, err)

	var result NextResult
	decodeData(t, out, &result)
	assert.False(t, result.Marked)
	assert.Equal(t, "l1-3", result.Next)
	assert.Equal(t, 0, result.Percent)
}

func TestNextAlreadyCompletedDoesNotRemark(t *testing.T) {
	opts := testOptions(t, "json")

	_, err := execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	out, err := execute(NewNextCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	var result NextResult
	decodeData(t, out, &result)
	assert.False(t, result.Marked)
	assert.Equal(t, 14, result.Percent)
}

func TestNextEndOfCourse(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewNextCommand(opts), "thinking-in-systems", "sys-l2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sys-l2 completed (50%)")
	assert.Contains(t, out, "End of course")
}

func TestNextUnknownLesson(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewNextCommand(opts), "crypto-foundations", "l9-9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E012]")
}

func TestCompleteIsIdempotent(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ l1-1 completed (14%)")

	out, err = execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)
	assert.Contains(t, out, "l1-1 already completed (14%)")
}

func TestCompletePersistsToStore(t *testing.T) {
	opts := testOptions(t, "text")

	_, err := execute(NewCompleteCommand(opts), "crypto-foundations", "l2-1")
	require.NoError(t, err)

	st, err := store.Open(opts.Config.DatabasePath)
	require.NoError(t, err)
	defer st.Close()

	ids, err := st.Read(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l2-1"}, ids)
}

func TestToggleRoundTrip(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewToggleCommand(opts), "crypto-foundations", "l1-2")
	require.NoError(t, err)
	var result ProgressResult
	decodeData(t, out, &result)
	assert.True(t, result.Completed)
	assert.True(t, result.Changed)
	assert.Equal(t, []string{"l1-2"}, result.Lessons)

	out, err = execute(NewToggleCommand(opts), "crypto-foundations", "l1-2")
	require.NoError(t, err)
	result = ProgressResult{}
	decodeData(t, out, &result)
	assert.False(t, result.Completed)
	assert.True(t, result.Changed)
	assert.Empty(t, result.Lessons)
}

func TestToggleRemovesStaleLesson(t *testing.T) {
	opts := testOptions(t, "text")

	st, err := store.Open(opts.Config.DatabasePath)
	require.NoError(t, err)
	require.NoError(t, st.Write(context.Background(), "c1", []string{"l1-1", "retired-lesson"}))
	require.NoError(t, st.Close())

	// Stale ids cannot be added.
	_, err = execute(NewCompleteCommand(opts), "crypto-foundations", "another-retired")
	require.Error(t, err)

	out, err := execute(NewToggleCommand(opts), "crypto-foundations", "retired-lesson")
	require.NoError(t, err)
	assert.Contains(t, out, "retired-lesson marked incomplete (14%)")
}

func TestReset(t *testing.T) {
	opts := testOptions(t, "text")

	_, err := execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	out, err := execute(NewResetCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress reset for crypto-foundations")

	out, err = execute(NewStartCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "Start Course: l1-1")
}

func TestProgressListsStoredCourses(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(NewProgressCommand(opts))
	require.NoError(t, err)
	var rows []StoredCourse
	decodeData(t, out, &rows)
	assert.Empty(t, rows)

	_, err = execute(NewToggleCommand(opts), "thinking-in-systems", "sys-l1")
	require.NoError(t, err)
	_, err = execute(NewToggleCommand(opts), "thinking-in-systems", "sys-l2")
	require.NoError(t, err)

	// Progress saved under another catalog is listed by id.
	opts.Config.CatalogPath = writeCatalog(t, tinyCatalog)
	_, err = execute(NewCompleteCommand(opts), "tiny", "t-1")
	require.NoError(t, err)
	opts.Config.CatalogPath = ""

	out, err = execute(NewProgressCommand(opts))
	require.NoError(t, err)
	decodeData(t, out, &rows)
	require.Len(t, rows, 2)

	assert.Equal(t, "c2", rows[0].CourseID)
	assert.Equal(t, "thinking-in-systems", rows[0].Slug)
	assert.True(t, rows[0].InCatalog)
	assert.Equal(t, 2, rows[0].Completed)
	assert.Equal(t, 100, rows[0].Percent)
	assert.Equal(t, int64(2), rows[0].Revision)

	assert.Equal(t, "t1", rows[1].CourseID)
	assert.False(t, rows[1].InCatalog)
	assert.Equal(t, 1, rows[1].Completed)
	assert.Equal(t, int64(1), rows[1].Revision)
}

func TestProgressText(t *testing.T) {
	opts := testOptions(t, "text")

	out, err := execute(NewProgressCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No saved progress.")

	_, err = execute(NewCompleteCommand(opts), "crypto-foundations", "l1-1")
	require.NoError(t, err)

	out, err = execute(NewProgressCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "1/7 lessons (14%), rev 1")

	_, err = execute(NewResetCommand(opts), "crypto-foundations")
	require.NoError(t, err)
	out, err = execute(NewProgressCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No saved progress.")
}

func TestStoreUnavailable(t *testing.T) {
	opts := testOptions(t, "text")
	// SQLite does not create missing parent directories.
	opts.Config.DatabasePath = filepath.Join(t.TempDir(), "missing", "crumbs.db")

	out, err := execute(NewStartCommand(opts), "crypto-foundations")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E013]")
}
