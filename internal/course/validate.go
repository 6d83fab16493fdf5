package course

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrMissingField        = "E201" // required field is empty
	ErrInvalidLevel        = "E202" // level not one of the known levels
	ErrInvalidLessonType   = "E203" // lesson type not video/text/quiz
	ErrTooFewOptions       = "E204" // quiz question needs at least two options
	ErrCorrectOutOfRange   = "E205" // correct_answer_index outside options
	ErrMissingVideoSource  = "E206" // video lesson without video_url
	ErrDuplicateLessonID   = "E207" // lesson id used twice in one course
	ErrDuplicateCourseSlug = "E208" // slug used by two courses
)

// ValidationError describes one structural problem in a course.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	// Warning marks problems that do not block loading. Duplicate lesson ids
	// are warnings: lookups resolve to the first occurrence.
	Warning bool `json:"warning,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a course for structural problems.
// Returns all problems found (does not fail-fast).
func Validate(c *Course) []ValidationError {
	if c == nil {
		return []ValidationError{{Field: "course", Message: "course is nil", Code: ErrMissingField}}
	}

	var errs []ValidationError
	prefix := "course"
	if c.Slug != "" {
		prefix = "course[" + c.Slug + "]"
	}

	if strings.TrimSpace(c.ID) == "" {
		errs = append(errs, missing(prefix+".id"))
	}
	if strings.TrimSpace(c.Slug) == "" {
		errs = append(errs, missing(prefix+".slug"))
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, missing(prefix+".title"))
	}
	if !ValidLevels[c.Level] {
		errs = append(errs, ValidationError{
			Field:   prefix + ".level",
			Message: fmt.Sprintf("unknown level %q", c.Level),
			Code:    ErrInvalidLevel,
		})
	}

	seen := make(map[string]string)
	for mi, m := range c.Modules {
		mField := fmt.Sprintf("%s.modules[%d]", prefix, mi)
		if strings.TrimSpace(m.ID) == "" {
			errs = append(errs, missing(mField+".id"))
		}
		for li, l := range m.Lessons {
			lField := fmt.Sprintf("%s.lessons[%d]", mField, li)
			errs = append(errs, validateLesson(lField, &l)...)

			if l.ID == "" {
				continue
			}
			if first, dup := seen[l.ID]; dup {
				errs = append(errs, ValidationError{
					Field:   lField + ".id",
					Message: fmt.Sprintf("lesson id %q already used at %s", l.ID, first),
					Code:    ErrDuplicateLessonID,
					Warning: true,
				})
				continue
			}
			seen[l.ID] = lField
		}
	}

	return errs
}

func validateLesson(field string, l *Lesson) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(l.ID) == "" {
		errs = append(errs, missing(field+".id"))
	}
	if !ValidLessonTypes[l.Type] {
		errs = append(errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown lesson type %q", l.Type),
			Code:    ErrInvalidLessonType,
		})
		return errs
	}

	switch l.Type {
	case LessonVideo:
		if strings.TrimSpace(l.VideoURL) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".video_url",
				Message: "video lesson requires a video source",
				Code:    ErrMissingVideoSource,
			})
		}
	case LessonQuiz:
		// An empty question list is allowed: the quiz renders as "no content".
		for qi, q := range l.Questions {
			qField := fmt.Sprintf("%s.questions[%d]", field, qi)
			if len(q.Options) < 2 {
				errs = append(errs, ValidationError{
					Field:   qField + ".options",
					Message: fmt.Sprintf("need at least 2 options, got %d", len(q.Options)),
					Code:    ErrTooFewOptions,
				})
			}
			if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
				errs = append(errs, ValidationError{
					Field:   qField + ".correct_answer_index",
					Message: fmt.Sprintf("index %d out of range for %d options", q.CorrectAnswerIndex, len(q.Options)),
					Code:    ErrCorrectOutOfRange,
				})
			}
		}
	}

	return errs
}

func missing(field string) ValidationError {
	return ValidationError{Field: field, Message: "required", Code: ErrMissingField}
}

// Blocking filters out warnings.
func Blocking(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if !e.Warning {
			out = append(out, e)
		}
	}
	return out
}
