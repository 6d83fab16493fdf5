package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/navigation"
	"github.com/roach88/braincrumbs/internal/quiz"
)

// QuizOptions holds flags for the quiz command.
type QuizOptions struct {
	*RootOptions
	Answers string // comma-separated option indexes, one per question
}

// AnswerResult records one checked question.
type AnswerResult struct {
	Question    string `json:"question"`
	Selected    int    `json:"selected"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// QuizResult is the output of the quiz command.
type QuizResult struct {
	Lesson    string         `json:"lesson"`
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Percent   int            `json:"percent"`
	Completed bool           `json:"completed"`
	Answers   []AnswerResult `json:"answers"`
}

// NewQuizCommand creates the quiz command.
func NewQuizCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuizOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quiz <course-slug> <lesson-id>",
		Short: "Take a quiz lesson",
		Long: `Take a quiz one question at a time. Options are numbered from 0.

Answers are read from stdin unless --answers supplies them. Finishing the
quiz marks the lesson complete regardless of score.

Examples:
  crumbs quiz crypto-foundations l1-3
  crumbs quiz crypto-foundations l1-3 --answers 1,2,2 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Answers, "answers", "", "scripted answers, e.g. 1,0,2")

	return cmd
}

func runQuiz(opts *QuizOptions, slug, lessonID string, cmd *cobra.Command) error {
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
	ref, ok := navigation.FindActive(c, lessonID)
	if !ok {
		return lessonNotFound(formatter, c, lessonID)
	}
	lesson := ref.Lesson
	if lesson.Type != course.LessonQuiz {
		return formatter.Fail(ExitCommandError, ErrCodeNotQuiz,
			fmt.Sprintf("lesson %q is a %s lesson, not a quiz", lessonID, lesson.Type), nil)
	}

	var scripted []int
	if opts.Answers != "" {
		if scripted, err = parseAnswers(opts.Answers, lesson.Questions); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBadAnswer, err.Error(), nil)
		}
	}

	engine := sess.progress(ctx, c)
	defer engine.Close()

	completed := false
	runner := quiz.NewRunner(lesson, func(id string) {
		engine.MarkCompleted(id)
		completed = true
	}, quiz.WithLogger(sess.logger))

	// Prompts go to stderr in JSON mode so stdout stays parseable.
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		w = formatter.diag()
	}

	if runner.State().Phase == quiz.PhaseEmpty {
		if opts.Format == "json" {
			return formatter.Respond(CLIResponse{
				Status:    "ok",
				Data:      QuizResult{Lesson: lessonID, Answers: []AnswerResult{}},
				SessionID: runner.SessionID(),
			})
		}
		fmt.Fprintln(w, "This quiz has no questions.")
		return nil
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	answers := make([]AnswerResult, 0, runner.State().Total)
	for runner.State().Phase == quiz.PhaseAnswering {
		q, _ := runner.Question()
		state := runner.State()
		fmt.Fprintf(w, "Question %d of %d: %s\n", state.Index+1, state.Total, q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(w, "  %d) %s\n", i, opt)
		}

		var choice int
		if scripted != nil {
			choice = scripted[state.Index]
		} else {
			choice, err = promptAnswer(w, in, runner.Accepts, len(q.Options))
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeBadAnswer, err.Error(), nil)
			}
		}

		correct, ok := runner.Answer(choice)
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeBadAnswer,
				fmt.Sprintf("answer %d: option %d not accepted", state.Index+1, choice), nil)
		}
		answers = append(answers, AnswerResult{
			Question:    q.ID,
			Selected:    choice,
			Correct:     correct,
			Explanation: q.Explanation,
		})
		if correct {
			fmt.Fprintln(w, "Correct!")
		} else {
			fmt.Fprintf(w, "Incorrect. The answer is %d) %s\n", q.CorrectAnswerIndex, q.Options[q.CorrectAnswerIndex])
		}
		if q.Explanation != "" {
			fmt.Fprintln(w, q.Explanation)
		}
		fmt.Fprintln(w)
	}

	if completed {
		if err := persisted(ctx, formatter, engine); err != nil {
			return err
		}
	}

	final := runner.State()
	result := QuizResult{
		Lesson:    lessonID,
		Score:     final.Score,
		Total:     final.Total,
		Percent:   final.Percent(),
		Completed: engine.IsCompleted(lessonID),
		Answers:   answers,
	}

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result, SessionID: runner.SessionID()})
	}

	fmt.Fprintln(w, "Quiz Completed!")
	fmt.Fprintf(w, "You scored %d out of %d correctly.\n", result.Score, result.Total)
	fmt.Fprintf(w, "%d%%\n", result.Percent)
	return nil
}

// parseAnswers reads one option index per question.
func parseAnswers(s string, questions []course.QuizQuestion) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(questions) {
		return nil, fmt.Errorf("quiz has %d question(s), got %d answer(s)", len(questions), len(parts))
	}

	answers := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("answer %d: %q is not a number", i+1, p)
		}
		if n < 0 || n >= len(questions[i].Options) {
			return nil, fmt.Errorf("answer %d: option %d out of range 0-%d", i+1, n, len(questions[i].Options)-1)
		}
		answers[i] = n
	}
	return answers, nil
}

// promptAnswer reads lines until accepts approves one as an option index.
func promptAnswer(w io.Writer, in *bufio.Scanner, accepts func(int) bool, options int) (int, error) {
	for {
		fmt.Fprint(w, "Answer: ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, fmt.Errorf("reading answer: %w", err)
			}
			return 0, fmt.Errorf("quiz aborted: no more input")
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && accepts(n) {
			return n, nil
		}
		fmt.Fprintf(w, "Enter a number from 0 to %d.\n", options-1)
	}
}
