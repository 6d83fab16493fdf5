package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/braincrumbs/internal/course"
)

//go:embed schema.cue
var schemaCUE string

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Load error codes - unified with the CLI's error output.
const (
	ErrCodeNotFound    = "E005" // catalog file not found
	ErrCodeReadFailed  = "E004" // catalog file unreadable
	ErrCodeParseFailed = "E006" // YAML/CUE syntax error
	ErrCodeSchema      = "E009" // structure does not match schema
	ErrCodeFormat      = "E010" // unsupported file extension
)

// LoadError describes one problem found while loading a catalog.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// file is the on-disk catalog shape shared by YAML and CUE sources.
type file struct {
	Courses []course.Course `json:"courses" yaml:"courses"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	cat, errs := Parse("default_catalog.yaml", defaultCatalogYAML)
	if len(errs) > 0 {
		panic(fmt.Sprintf("catalog: embedded default catalog is invalid: %v", errs[0]))
	}
	return cat
}

// LoadFile reads a catalog from path. The format is chosen by extension:
// .yaml, .yml and .json are decoded as YAML; .cue is evaluated as CUE.
//
// All problems found are returned; a nil Catalog means loading failed.
// Duplicate lesson ids are reported as warnings alongside a usable Catalog.
func LoadFile(path string) (*Catalog, []error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: "catalog file not found", Path: path}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Path: path}}
	}
	return Parse(path, data)
}

// Parse decodes catalog data; name selects the format by extension.
func Parse(name string, data []byte) (*Catalog, []error) {
	var (
		f    file
		errs []error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		f, errs = parseYAML(name, data)
	case ".cue":
		f, errs = parseCUE(name, data)
	default:
		return nil, []error{&LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported catalog format %q (want .yaml, .yml, .json or .cue)", filepath.Ext(name)),
			Path:    name,
		}}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var warnings []error
	for i := range f.Courses {
		for _, ve := range course.Validate(&f.Courses[i]) {
			if ve.Warning {
				warnings = append(warnings, ve)
				continue
			}
			errs = append(errs, ve)
		}
	}
	if len(errs) > 0 {
		return nil, append(errs, warnings...)
	}

	cat, err := New(f.Courses)
	if err != nil {
		return nil, []error{err}
	}
	return cat, warnings
}

// parseYAML decodes strictly (unknown fields rejected), then checks the
// decoded value against the CUE schema.
func parseYAML(name string, data []byte) (file, []error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return file{}, []error{&LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("failed to parse YAML: %v", err), Path: name}}
	}

	// JSON is valid CUE, so the decoded value is re-checked through the same
	// schema that guards .cue catalogs.
	encoded, err := json.Marshal(f)
	if err != nil {
		return file{}, []error{&LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Path: name}}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(encoded, cue.Filename(name))
	if _, errs := checkSchema(ctx, name, v); len(errs) > 0 {
		return file{}, errs
	}
	return f, nil
}

// parseCUE evaluates a CUE catalog, unifies it with the schema and decodes it.
func parseCUE(name string, data []byte) (file, []error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return file{}, cueLoadErrors(ErrCodeParseFailed, name, err)
	}

	unified, errs := checkSchema(ctx, name, v)
	if len(errs) > 0 {
		return file{}, errs
	}

	var f file
	if err := unified.Decode(&f); err != nil {
		return file{}, cueLoadErrors(ErrCodeSchema, name, err)
	}
	return f, nil
}

func checkSchema(ctx *cue.Context, name string, v cue.Value) (cue.Value, []error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, cueLoadErrors(ErrCodeParseFailed, "schema.cue", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, cueLoadErrors(ErrCodeSchema, name, err)
	}
	return unified, nil
}

// cueLoadErrors expands a CUE error list into LoadErrors with positions.
func cueLoadErrors(code, name string, err error) []error {
	var out []error
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if p := e.Path(); len(p) > 0 {
			msg = strings.Join(p, ".") + ": " + msg
		}
		out = append(out, &LoadError{Code: code, Message: msg, Path: name, Pos: e.Position()})
	}
	if len(out) == 0 {
		out = append(out, &LoadError{Code: code, Message: err.Error(), Path: name})
	}
	return out
}
