package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/navigation"
	"github.com/roach88/braincrumbs/internal/progress"
)

// StartResult is the output of the start command.
type StartResult struct {
	Label  string `json:"label"`
	Lesson string `json:"lesson,omitempty"`
	Title  string `json:"title,omitempty"`
}

// NextResult is the output of the next command.
type NextResult struct {
	Lesson      string `json:"lesson"`
	Marked      bool   `json:"marked"`
	Next        string `json:"next,omitempty"`
	NextTitle   string `json:"next_title,omitempty"`
	EndOfCourse bool   `json:"end_of_course"`
	Percent     int    `json:"percent"`
}

// ProgressResult is the output of commands that change completion.
type ProgressResult struct {
	Lesson    string   `json:"lesson,omitempty"`
	Completed bool     `json:"completed"`
	Changed   bool     `json:"changed"`
	Percent   int      `json:"percent"`
	Lessons   []string `json:"completed_lessons"`
}

// NextOptions holds flags for the next command.
type NextOptions struct {
	*RootOptions
	Peek bool
}

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <course-slug>",
		Short: "Print where to start or continue a course",
		Long: `Print the first lesson not yet completed. When every lesson is complete
the first lesson is returned so the course can be reviewed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(rootOpts, args[0], cmd)
		},
	}
}

func runStart(opts *RootOptions, slug string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	c, err := sess.course(formatter, slug)
	if err != nil {
		return err
	}
	engine := sess.progress(cmd.Context(), c)
	defer engine.Close()

	result := StartResult{Label: startLabel(engine, c.TotalLessons())}
	if id, ok := navigation.StartTarget(c, engine.IsCompleted); ok {
		result.Lesson = id
		result.Title = lessonTitle(c, id)
	}

	if opts.Format == "json" {
		return formatter.OK(result)
	}
	if result.Lesson == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Course has no lessons.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", result.Label, result.Lesson, result.Title)
	return nil
}

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NextOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "next <course-slug> <lesson-id>",
		Short: "Finish a lesson and print the one after it",
		Long: `Mark the lesson complete (if it is not already) and print the lesson
that follows it, or "End of course" after the last lesson.

Use --peek to look ahead without marking anything.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Peek, "peek", false, "do not mark the current lesson complete")

	return cmd
}

func runNext(opts *NextOptions, slug, lessonID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	c, err := sess.course(formatter, slug)
	if err != nil {
		return err
	}
	if _, ok := navigation.FindActive(c, lessonID); !ok {
		return lessonNotFound(formatter, c, lessonID)
	}

	engine := sess.progress(ctx, c)
	defer engine.Close()

	result := NextResult{Lesson: lessonID}
	if !opts.Peek && !engine.IsCompleted(lessonID) {
		engine.MarkCompleted(lessonID)
		if err := persisted(ctx, formatter, engine); err != nil {
			return err
		}
		result.Marked = true
	}
	result.Percent = progress.DisplayPercent(engine.CompletionPercentage(c.TotalLessons()))

	if next, ok := navigation.NextLesson(c, lessonID); ok {
		result.Next = next
		result.NextTitle = lessonTitle(c, next)
	} else {
		result.EndOfCourse = true
	}

	if opts.Format == "json" {
		return formatter.OK(result)
	}

	w := cmd.OutOrStdout()
	if result.Marked {
		fmt.Fprintf(w, "✓ %s completed (%d%%)\n", lessonID, result.Percent)
	}
	if result.EndOfCourse {
		fmt.Fprintln(w, "End of course")
		return nil
	}
	fmt.Fprintf(w, "Next: %s %s\n", result.Next, result.NextTitle)
	return nil
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "complete <course-slug> <lesson-id>",
		Short:         "Mark a lesson complete",
		Long:          `Mark a lesson complete. Completing an already completed lesson changes nothing.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, args[0], args[1], false, cmd)
		},
	}
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <course-slug> <lesson-id>",
		Short: "Flip a lesson between complete and incomplete",
		Long: `Flip a lesson's completion. Ids no longer in the course can be toggled
off so stale progress can be cleaned up.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, args[0], args[1], true, cmd)
		},
	}
}

func runMutation(opts *RootOptions, slug, lessonID string, toggle bool, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	c, err := sess.course(formatter, slug)
	if err != nil {
		return err
	}

	engine := sess.progress(ctx, c)
	defer engine.Close()

	_, inCourse := navigation.FindActive(c, lessonID)
	// Stale ids may only be toggled off.
	if !inCourse && !(toggle && engine.IsCompleted(lessonID)) {
		return lessonNotFound(formatter, c, lessonID)
	}

	before := engine.IsCompleted(lessonID)
	if toggle {
		engine.ToggleCompletion(lessonID)
	} else {
		engine.MarkCompleted(lessonID)
	}
	after := engine.IsCompleted(lessonID)

	if before != after {
		if err := persisted(ctx, formatter, engine); err != nil {
			return err
		}
	}

	result := ProgressResult{
		Lesson:    lessonID,
		Completed: after,
		Changed:   before != after,
		Percent:   progress.DisplayPercent(engine.CompletionPercentage(c.TotalLessons())),
		Lessons:   engine.Completed(),
	}

	if opts.Format == "json" {
		return formatter.OK(result)
	}

	w := cmd.OutOrStdout()
	switch {
	case !result.Changed:
		fmt.Fprintf(w, "%s already completed (%d%%)\n", lessonID, result.Percent)
	case result.Completed:
		fmt.Fprintf(w, "✓ %s completed (%d%%)\n", lessonID, result.Percent)
	default:
		fmt.Fprintf(w, "%s marked incomplete (%d%%)\n", lessonID, result.Percent)
	}
	return nil
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reset <course-slug>",
		Short:         "Clear all progress for a course",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(rootOpts, args[0], cmd)
		},
	}
}

func runReset(opts *RootOptions, slug string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	c, err := sess.course(formatter, slug)
	if err != nil {
		return err
	}

	if err := sess.store.Delete(cmd.Context(), c.ID); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	sess.logger.Debug("progress reset", "course_id", c.ID)

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: ProgressResult{Lessons: []string{}}})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Progress reset for %s\n", c.Slug)
	return nil
}

func lessonNotFound(f *OutputFormatter, c *course.Course, lessonID string) error {
	return f.Fail(ExitCommandError, ErrCodeLessonNotFound,
		fmt.Sprintf("lesson %q not found in %s", lessonID, c.Slug), nil)
}

func lessonTitle(c *course.Course, lessonID string) string {
	if ref, ok := navigation.FindActive(c, lessonID); ok {
		return ref.Lesson.Title
	}
	return ""
}
