package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/navigation"
	"github.com/roach88/braincrumbs/internal/progress"
)

// Button labels shown next to progress state.
const (
	labelStart     = "Start Course"
	labelContinue  = "Continue Learning"
	labelCompleted = "Completed"
	labelMark      = "Mark as Complete"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Lesson string
}

// LessonSummary is a lesson row in the overview.
type LessonSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Duration  string `json:"duration,omitempty"`
	Completed bool   `json:"completed"`
}

// ModuleSummary is a module in the overview.
type ModuleSummary struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Lessons []LessonSummary `json:"lessons"`
}

// OverviewView is the course page with no active lesson.
type OverviewView struct {
	View        string          `json:"view"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Level       string          `json:"level"`
	Duration    string          `json:"duration"`
	Percent     int             `json:"percent"`
	Completed   int             `json:"completed"`
	Lessons     int             `json:"lessons"`
	StartLabel  string          `json:"start_label"`
	StartLesson string          `json:"start_lesson,omitempty"`
	Modules     []ModuleSummary `json:"modules"`
}

// LessonView is the lesson player.
type LessonView struct {
	View      string `json:"view"`
	Slug      string `json:"slug"`
	Module    string `json:"module"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Duration  string `json:"duration,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
	Content   string `json:"content,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Questions int    `json:"questions,omitempty"`
	Completed bool   `json:"completed"`
	Next      string `json:"next,omitempty"`
	Percent   int    `json:"percent"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <course-slug>",
		Short: "Show a course overview or one lesson",
		Long: `Show a course's modules and lessons with completion marks, or the
lesson player when --lesson names a lesson in the course. An unknown lesson
id falls back to the overview.

Examples:
  crumbs show crypto-foundations
  crumbs show crypto-foundations --lesson l1-2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lesson, "lesson", "", "lesson id to open")

	return cmd
}

func runShow(opts *ShowOptions, slug string, cmd *cobra.Command) error {
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
	engine := sess.progress(ctx, c)
	defer engine.Close()

	view := navigation.Decide(c, opts.Lesson)
	if opts.Lesson != "" && view.Kind == navigation.ViewOverview {
		formatter.VerboseLog("Lesson %q not in %s, showing overview", opts.Lesson, slug)
	}

	if view.Kind == navigation.ViewLesson {
		lv := buildLessonView(c, view.Active, engine)
		if opts.Format == "json" {
			return formatter.OK(lv)
		}
		writeLessonView(cmd.OutOrStdout(), c, lv)
		return nil
	}

	ov := buildOverview(c, engine)
	if opts.Format == "json" {
		return formatter.OK(ov)
	}
	writeOverview(cmd.OutOrStdout(), ov)
	return nil
}

func buildOverview(c *course.Course, engine *progress.Engine) OverviewView {
	total := c.TotalLessons()
	ov := OverviewView{
		View:        navigation.ViewOverview.String(),
		Slug:        c.Slug,
		Title:       c.Title,
		Description: c.Description,
		Level:       string(c.Level),
		Duration:    c.Duration,
		Percent:     progress.DisplayPercent(engine.CompletionPercentage(total)),
		Completed:   engine.CompletedCount(),
		Lessons:     total,
		StartLabel:  startLabel(engine, total),
		Modules:     make([]ModuleSummary, 0, len(c.Modules)),
	}
	ov.StartLesson, _ = navigation.StartTarget(c, engine.IsCompleted)

	for _, m := range c.Modules {
		ms := ModuleSummary{ID: m.ID, Title: m.Title, Lessons: make([]LessonSummary, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			ms.Lessons = append(ms.Lessons, LessonSummary{
				ID:        l.ID,
				Title:     l.Title,
				Type:      string(l.Type),
				Duration:  l.Duration,
				Completed: engine.IsCompleted(l.ID),
			})
		}
		ov.Modules = append(ov.Modules, ms)
	}
	return ov
}

// startLabel picks the start button text from the completion percentage.
func startLabel(engine *progress.Engine, total int) string {
	if engine.CompletionPercentage(total) > 0 {
		return labelContinue
	}
	return labelStart
}

func buildLessonView(c *course.Course, ref course.LessonRef, engine *progress.Engine) LessonView {
	l := ref.Lesson
	lv := LessonView{
		View:      navigation.ViewLesson.String(),
		Slug:      c.Slug,
		Module:    ref.Module.Title,
		ID:        l.ID,
		Title:     l.Title,
		Type:      string(l.Type),
		Duration:  l.Duration,
		Completed: engine.IsCompleted(l.ID),
		Percent:   progress.DisplayPercent(engine.CompletionPercentage(c.TotalLessons())),
	}
	switch l.Type {
	case course.LessonVideo:
		lv.VideoURL = l.VideoURL
	case course.LessonText:
		lv.Content = l.Content
		lv.ImageURL = l.ImageURL
	case course.LessonQuiz:
		lv.Questions = len(l.Questions)
	}
	lv.Next, _ = navigation.NextLesson(c, l.ID)
	return lv
}

func writeOverview(w io.Writer, ov OverviewView) {
	fmt.Fprintf(w, "%s [%s, %s]\n", ov.Title, ov.Level, ov.Duration)
	fmt.Fprintln(w, ov.Description)
	fmt.Fprintf(w, "Progress: %d/%d lessons (%d%%)\n", ov.Completed, ov.Lessons, ov.Percent)
	if ov.StartLesson != "" {
		fmt.Fprintf(w, "%s: %s\n", ov.StartLabel, ov.StartLesson)
	}

	for _, m := range ov.Modules {
		fmt.Fprintln(w)
		fmt.Fprintln(w, m.Title)
		for _, l := range m.Lessons {
			mark := " "
			if l.Completed {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %-10s %s (%s", mark, l.ID, l.Title, l.Type)
			if l.Duration != "" {
				fmt.Fprintf(w, ", %s", l.Duration)
			}
			fmt.Fprintln(w, ")")
		}
	}
}

func writeLessonView(w io.Writer, c *course.Course, lv LessonView) {
	fmt.Fprintf(w, "%s › %s\n", c.Title, lv.Module)
	status := labelMark
	if lv.Completed {
		status = labelCompleted
	}
	fmt.Fprintf(w, "%s (%s) [%s]\n", lv.Title, lv.Type, status)
	fmt.Fprintln(w)

	switch course.LessonType(lv.Type) {
	case course.LessonVideo:
		fmt.Fprintf(w, "Video: %s\n", lv.VideoURL)
	case course.LessonText:
		if lv.ImageURL != "" {
			fmt.Fprintf(w, "Image: %s\n", lv.ImageURL)
		}
		fmt.Fprintln(w, lv.Content)
	case course.LessonQuiz:
		fmt.Fprintf(w, "Quiz: %d question(s). Run: crumbs quiz %s %s\n", lv.Questions, lv.Slug, lv.ID)
	}

	fmt.Fprintln(w)
	if lv.Next != "" {
		fmt.Fprintf(w, "Next: %s\n", lv.Next)
	} else {
		fmt.Fprintln(w, "End of course")
	}
}
