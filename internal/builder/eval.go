package builder

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions available to step expressions.
var functions = map[string]function.Function{
	"concat":   stdlib.ConcatFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"lower":    stdlib.LowerFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"split":    stdlib.SplitFunc,
	"tonumber": stdlib.MakeToFunc(cty.Number),
	"tostring": stdlib.MakeToFunc(cty.String),
	"upper":    stdlib.UpperFunc,
}

// evalContexts builds one HCL evaluation context per distinct config and
// caches it; every step built with that config evaluates against it.
type evalContexts struct {
	byConfig map[*config.Config]*hcl.EvalContext
}

func newEvalContexts() *evalContexts {
	return &evalContexts{byConfig: make(map[*config.Config]*hcl.EvalContext)}
}

// For returns the context for a step: the shared `config` object plus a
// child scope holding the step's own `step` object.
func (e *evalContexts) For(cfg *config.Config, path nodeid.Path) (*hcl.EvalContext, error) {
	parent, ok := e.byConfig[cfg]
	if !ok {
		resolved, err := cfg.Resolve()
		if err != nil {
			return nil, err
		}
		parent = &hcl.EvalContext{
			Variables: map[string]cty.Value{"config": configValue(resolved)},
			Functions: functions,
		}
		e.byConfig[cfg] = parent
	}

	child := parent.NewChild()
	child.Variables = map[string]cty.Value{
		"step": cty.ObjectVal(map[string]cty.Value{
			"path": cty.StringVal(path.String()),
			"name": cty.StringVal(path.Name()),
		}),
	}
	return child, nil
}

// configValue exposes a resolved config as an object of sections, each an
// object of string options.
func configValue(r config.Resolved) cty.Value {
	sections := make(map[string]cty.Value, len(r))
	for section, options := range r {
		vals := make(map[string]cty.Value, len(options))
		for option, v := range options {
			vals[option] = cty.StringVal(v)
		}
		sections[section] = cty.ObjectVal(vals)
	}
	return cty.ObjectVal(sections)
}

// decodeOptional evaluates expr into target. It reports false, leaving
// target untouched, when the attribute is absent or evaluates to null.
func decodeOptional(expr hcl.Expression, ectx *hcl.EvalContext, target any) (bool, hcl.Diagnostics) {
	if expr == nil {
		return false, nil
	}
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return false, diags
	}
	if v.IsNull() {
		return false, nil
	}
	return true, gohcl.DecodeExpression(expr, ectx, target)
}

// exprError reports an attribute that could not be evaluated.
func exprError(id, attr string, diags hcl.Diagnostics) error {
	return faults.Config(faults.ErrInvalidValue, id, "attribute %q: %s", attr, diags.Error())
}
