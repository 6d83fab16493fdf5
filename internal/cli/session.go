package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/braincrumbs/internal/catalog"
	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/progress"
	"github.com/roach88/braincrumbs/internal/store"
)

// CLI error codes. Catalog load codes (E004-E010) and course validation
// codes (E201-E208) are passed through unchanged.
const (
	ErrCodeGeneric        = "E001" // unclassified failure
	ErrCodeConfig         = "E002" // invalid configuration
	ErrCodeCourseNotFound = "E011" // no course with the given slug
	ErrCodeLessonNotFound = "E012" // lesson id not in the course
	ErrCodeStore          = "E013" // progress store unavailable or write failed
	ErrCodeNotQuiz        = "E014" // lesson is not a quiz
	ErrCodeBadAnswer      = "E015" // quiz answer not a valid option index
)

// session bundles what a progress command needs: the catalog, the progress
// store and a logger.
type session struct {
	catalog *catalog.Catalog
	store   *store.Store
	logger  *slog.Logger
}

// openSession resolves configuration, loads the catalog and opens the
// progress store. Failures are reported through f.
func openSession(opts *RootOptions, f *OutputFormatter) (*session, error) {
	cfg, err := opts.ResolveConfig()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	logger := slog.Default()

	cat, err := openCatalog(cfg.CatalogPath, logger, f)
	if err != nil {
		return nil, err
	}

	st, err := store.OpenConfig(cfg)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	f.VerboseLog("Opened %s progress store", st.Dialect().Name())

	return &session{catalog: cat, store: st, logger: logger}, nil
}

// openCatalog loads path, or the embedded catalog when path is empty.
// Warnings are logged; blocking problems fail with the first error's code.
func openCatalog(path string, logger *slog.Logger, f *OutputFormatter) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	cat, errs := catalog.LoadFile(path)
	if cat == nil {
		code, message := errorCode(errs[0])
		return nil, f.Fail(ExitCommandError, code, message, errorStrings(errs))
	}
	for _, w := range errs {
		logger.Warn("catalog warning", "path", path, "error", w)
	}
	f.VerboseLog("Loaded %d course(s) from %s", cat.Len(), path)
	return cat, nil
}

// Close releases the store.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close progress store", "error", err)
	}
}

// course looks up slug, reporting unknown slugs through f.
func (s *session) course(f *OutputFormatter, slug string) (*course.Course, error) {
	c, err := s.catalog.Lookup(slug)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeCourseNotFound, fmt.Sprintf("course %q not found", slug), nil)
	}
	return c, nil
}

// progress loads the completion state for c. Writes are synchronous so a
// command's changes are durable when it returns.
func (s *session) progress(ctx context.Context, c *course.Course) *progress.Engine {
	return progress.Load(ctx, s.store, c.ID,
		progress.WithLogger(s.logger),
		progress.WithSynchronousWrites(),
	)
}

// persisted reports the outcome of the engine's last write through f.
func persisted(ctx context.Context, f *OutputFormatter, engine *progress.Engine) error {
	if err := engine.Flush(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "progress not saved: "+err.Error(), nil)
	}
	return nil
}

// errorCode extracts a stable code from catalog and validation errors.
func errorCode(err error) (string, string) {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	var ve course.ValidationError
	if errors.As(err, &ve) {
		return ve.Code, ve.Error()
	}
	return ErrCodeGeneric, err.Error()
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
