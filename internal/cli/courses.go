package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/progress"
)

// CoursesOptions holds flags for the courses command.
type CoursesOptions struct {
	*RootOptions
	Search string
	Level  string
}

// CourseSummary is one row of the course listing.
type CourseSummary struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Duration  string `json:"duration"`
	Lessons   int    `json:"lessons"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

// NewCoursesCommand creates the courses command.
func NewCoursesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoursesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses with completion progress",
		Long: `List the catalog's courses in declaration order with each course's
completion percentage.

Examples:
  crumbs courses
  crumbs courses --search "feedback loops"
  crumbs courses --level beginner --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCourses(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "filter by text in title or description")
	cmd.Flags().StringVar(&opts.Level, "level", "", "filter by level (beginner|intermediate|advanced)")

	return cmd
}

func runCourses(ctx context.Context, opts *CoursesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var level course.Level
	if opts.Level != "" {
		var ok bool
		if level, ok = parseLevel(opts.Level); !ok {
			return formatter.Fail(ExitCommandError, course.ErrInvalidLevel,
				fmt.Sprintf("unknown level %q", opts.Level), nil)
		}
	}

	sess, err := openSession(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	courses := sess.catalog.Search(opts.Search)
	if level != "" {
		courses = intersect(courses, sess.catalog.ByLevel(level))
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		engine := sess.progress(ctx, c)
		total := c.TotalLessons()
		summaries = append(summaries, CourseSummary{
			Slug:      c.Slug,
			Title:     c.Title,
			Level:     string(c.Level),
			Duration:  c.Duration,
			Lessons:   total,
			Completed: engine.CompletedCount(),
			Percent:   progress.DisplayPercent(engine.CompletionPercentage(total)),
		})
		engine.Close()
	}

	if opts.Format == "json" {
		return formatter.OK(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No courses found.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%-24s %s [%s, %s] %d%%\n", s.Slug, s.Title, s.Level, s.Duration, s.Percent)
	}
	return nil
}

// intersect keeps the courses of a that also appear in b, in a's order.
func intersect(a, b []*course.Course) []*course.Course {
	out := make([]*course.Course, 0, len(a))
	for _, c := range a {
		if slices.Contains(b, c) {
			out = append(out, c)
		}
	}
	return out
}

// parseLevel matches a level name case-insensitively.
func parseLevel(s string) (course.Level, bool) {
	for level := range course.ValidLevels {
		if strings.EqualFold(string(level), s) {
			return level, true
		}
	}
	return "", false
}
