package placement

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Filter is a compiled room filter expression.
// A nil *Filter matches every room.
type Filter struct {
	expression string
	program    *vm.Program
}

// filterEnv is the set of variables a filter expression can reference.
func filterEnv(r model.Room, linked bool) map[string]any {
	return map[string]any{
		"id":       string(r.ID),
		"name":     r.Name,
		"number":   r.Number,
		"level":    string(r.Level),
		"area":     r.Area,
		"document": string(r.Document),
		"linked":   linked,
	}
}

// CompileFilter compiles a boolean expression over a room, for example
//
//	area >= 4 && level in ["L1", "L2"] && !linked
//
// Variables: id, name, number, level, document (strings), area (float) and
// linked (bool). An empty expression returns a nil Filter.
func CompileFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression,
		expr.Env(filterEnv(model.Room{}, false)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeInvalidFilter, err, "compile filter %q", expression)
	}
	return &Filter{expression: expression, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expression
}

// Match reports whether the room passes the filter.
func (f *Filter) Match(r model.Room, linked bool) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(r, linked))
	if err != nil {
		return false, fmt.Errorf("filter %q on room %s: %w", f.expression, r.Ref(), err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
