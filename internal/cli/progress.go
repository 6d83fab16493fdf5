package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/progress"
)

// StoredCourse is one course with saved progress.
type StoredCourse struct {
	CourseID  string `json:"course_id"`
	Slug      string `json:"slug,omitempty"`
	Title     string `json:"title,omitempty"`
	InCatalog bool   `json:"in_catalog"`
	Completed int    `json:"completed"`
	Lessons   int    `json:"lessons,omitempty"`
	Percent   int    `json:"percent"`
	Revision  int64  `json:"revision"`
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "List courses with saved progress",
		Long: `List every course the progress store holds, with the number of
completed lessons and how many times the progress has been written.

Courses no longer in the catalog are listed by id.

Examples:
  crumbs progress
  crumbs progress --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(rootOpts, cmd)
		},
	}
}

func runProgress(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	ids, err := sess.store.Courses(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	rows := make([]StoredCourse, 0, len(ids))
	for _, id := range ids {
		rev, err := sess.store.Revision(ctx, id)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		row := StoredCourse{CourseID: id, Revision: rev}

		if c, ok := sess.catalog.CourseByID(id); ok {
			engine := sess.progress(ctx, c)
			row.Slug = c.Slug
			row.Title = c.Title
			row.InCatalog = true
			row.Lessons = c.TotalLessons()
			row.Completed = engine.CompletedCount()
			row.Percent = progress.DisplayPercent(engine.CompletionPercentage(row.Lessons))
			engine.Close()
		} else {
			stored, err := sess.store.Read(ctx, id)
			if err != nil {
				sess.logger.Warn("unreadable progress", "course_id", id, "error", err)
			}
			row.Completed = len(stored)
		}
		rows = append(rows, row)
	}
	formatter.VerboseLog("Found progress for %d course(s)", len(rows))

	if opts.Format == "json" {
		return formatter.OK(rows)
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No saved progress.")
		return nil
	}
	for _, r := range rows {
		if !r.InCatalog {
			fmt.Fprintf(w, "%-24s (not in catalog) %d completed, rev %d\n", r.CourseID, r.Completed, r.Revision)
			continue
		}
		fmt.Fprintf(w, "%-24s %d/%d lessons (%d%%), rev %d\n", r.Slug, r.Completed, r.Lessons, r.Percent, r.Revision)
	}
	return nil
}
