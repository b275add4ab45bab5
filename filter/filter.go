// Package filter compiles user-supplied expressions and evaluates them
// against resolved media entities. It backs the CLI --filter flag.
package filter

import (
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/defaltsimon/tmdbie/tmdb"
)

// Filter is a compiled filter expression.
type Filter struct {
	program *vm.Program
	source  string
}

// Compile compiles a filter expression. Expressions see the entity under
// Movie/Show/Person (one non-nil, matching the entity kind) plus a set of
// helper functions; see the package tests for examples.
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty filter expression",
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(staticEnv()),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	return &Filter{
		program: program,
		source:  expression,
	}, nil
}

// String returns the original expression.
func (f *Filter) String() string {
	return f.source
}

// Evaluate runs the filter against one entity. A filter whose result is not
// a boolean fails with an EvaluationError.
func (f *Filter) Evaluate(entity tmdb.MediaEntity) (bool, error) {
	result, err := expr.Run(f.program, entityEnv(entity))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.source,
			EntityName: entity.EntityName(),
			Reason:     err.Error(),
			Err:        err,
		}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.source,
			EntityName: entity.EntityName(),
			Reason:     "expression did not evaluate to a boolean",
		}
	}
	return matched, nil
}

// Matches returns the entities the filter accepts, in input order. Entities
// the filter errors on are dropped.
func (f *Filter) Matches(entities []tmdb.MediaEntity) []tmdb.MediaEntity {
	var out []tmdb.MediaEntity
	for _, entity := range entities {
		if entity == nil {
			continue
		}
		if ok, err := f.Evaluate(entity); err == nil && ok {
			out = append(out, entity)
		}
	}
	return out
}

// staticEnv declares the helper functions available at compile time.
func staticEnv() map[string]any {
	return map[string]any{
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"year": func(date string) int {
			if len(date) < 4 {
				return 0
			}
			y, _ := strconv.Atoi(date[:4])
			return y
		},
	}
}

// entityEnv builds the evaluation environment for one entity. Exactly one of
// Movie/Show/Person is non-nil; Type, ID and Name are always set.
func entityEnv(entity tmdb.MediaEntity) map[string]any {
	env := staticEnv()

	env["ID"] = entity.EntityID()
	env["Name"] = entity.EntityName()
	env["Movie"] = (*tmdb.Movie)(nil)
	env["Show"] = (*tmdb.TVShow)(nil)
	env["Person"] = (*tmdb.Person)(nil)

	var genres []string
	switch v := entity.(type) {
	case *tmdb.Movie:
		env["Type"] = tmdb.MediaTypeMovie
		env["Movie"] = v
		genres = v.Genres
	case *tmdb.TVShow:
		env["Type"] = tmdb.MediaTypeTV
		env["Show"] = v
		genres = v.Genres
	case *tmdb.Person:
		env["Type"] = tmdb.MediaTypePerson
		env["Person"] = v
	default:
		env["Type"] = ""
	}

	env["hasGenre"] = func(genre string) bool {
		for _, g := range genres {
			if strings.EqualFold(g, genre) {
				return true
			}
		}
		return false
	}

	return env
}
