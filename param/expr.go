// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"fmt"
	"math"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// axisRef matches a reference to a per-axis distance component, d[0] etc.
var axisRef = regexp.MustCompile(`d\[\d*\]`)

// Expr is a parameter computed from the distance d between the pre and
// post neuron.  When the expression indexes d (d[0] + d[2]) then d is the
// vector of per-axis distances, otherwise it is the euclidean distance.
//
// Expressions are compiled once, and can only call the math functions
// listed in Functions and use the constants e and pi.
type Expr struct {
	Text    string `desc:"source text of the expression"`
	PerAxis bool   `desc:"d is the per-axis distance vector instead of the scalar distance"`

	prog *vm.Program
	dist func(float64) float64
	axes func([]float64) float64
}

// Functions are the math functions available to expressions, named as in numpy.
var Functions = map[string]func(x ...float64) float64{
	"arccos":  func(x ...float64) float64 { return math.Acos(x[0]) },
	"arcsin":  func(x ...float64) float64 { return math.Asin(x[0]) },
	"arctan":  func(x ...float64) float64 { return math.Atan(x[0]) },
	"arctan2": func(x ...float64) float64 { return math.Atan2(x[0], x[1]) },
	"ceil":    func(x ...float64) float64 { return math.Ceil(x[0]) },
	"cos":     func(x ...float64) float64 { return math.Cos(x[0]) },
	"cosh":    func(x ...float64) float64 { return math.Cosh(x[0]) },
	"exp":     func(x ...float64) float64 { return math.Exp(x[0]) },
	"fabs":    func(x ...float64) float64 { return math.Abs(x[0]) },
	"abs":     func(x ...float64) float64 { return math.Abs(x[0]) },
	"floor":   func(x ...float64) float64 { return math.Floor(x[0]) },
	"fmod":    func(x ...float64) float64 { return math.Mod(x[0], x[1]) },
	"hypot":   func(x ...float64) float64 { return math.Hypot(x[0], x[1]) },
	"ldexp":   func(x ...float64) float64 { return math.Ldexp(x[0], int(x[1])) },
	"log":     func(x ...float64) float64 { return math.Log(x[0]) },
	"log10":   func(x ...float64) float64 { return math.Log10(x[0]) },
	"power":   func(x ...float64) float64 { return math.Pow(x[0], x[1]) },
	"sin":     func(x ...float64) float64 { return math.Sin(x[0]) },
	"sinh":    func(x ...float64) float64 { return math.Sinh(x[0]) },
	"sqrt":    func(x ...float64) float64 { return math.Sqrt(x[0]) },
	"tan":     func(x ...float64) float64 { return math.Tan(x[0]) },
	"tanh":    func(x ...float64) float64 { return math.Tanh(x[0]) },
	"maximum": func(x ...float64) float64 { return math.Max(x[0], x[1]) },
	"minimum": func(x ...float64) float64 { return math.Min(x[0], x[1]) },
}

// arity of each of the Functions
var arity = map[string]int{"arctan2": 2, "fmod": 2, "hypot": 2, "ldexp": 2, "power": 2, "maximum": 2, "minimum": 2}

// toFloat converts a numeric expression value to float64.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: expression value %v (%T) is not a number", ErrUnsupportedParameterFormat, v, v)
}

func exprOptions(env map[string]any) []expr.Option {
	opts := []expr.Option{expr.Env(env), expr.DisableAllBuiltins()}
	for name, fn := range Functions {
		name, fn := name, fn
		n := 1
		if a, ok := arity[name]; ok {
			n = a
		}
		opts = append(opts, expr.Function(name, func(params ...any) (any, error) {
			if len(params) != n {
				return nil, fmt.Errorf("%s takes %d arguments, got %d", name, n, len(params))
			}
			x := make([]float64, n)
			for i, p := range params {
				f, err := toFloat(p)
				if err != nil {
					return nil, err
				}
				x[i] = f
			}
			return fn(x...), nil
		}))
	}
	return opts
}

// newEnv returns the variables visible to an expression.
func newEnv(perAxis bool) map[string]any {
	env := map[string]any{"e": math.E, "pi": math.Pi, "d": 0.0}
	if perAxis {
		env["d"] = []float64{0, 0, 0}
	}
	return env
}

// CompileExpr parses and type checks a distance expression.
func CompileExpr(text string) (*Expr, error) {
	ex := &Expr{Text: text, PerAxis: axisRef.MatchString(text)}
	prog, err := expr.Compile(text, exprOptions(newEnv(ex.PerAxis))...)
	if err != nil {
		return nil, fmt.Errorf("%w: expression %q: %v", ErrUnsupportedParameterFormat, text, err)
	}
	ex.prog = prog
	return ex, nil
}

// Evaluator returns a function evaluating the expression at a distance d
// with per-axis components axes.  The returned function reuses its
// variables and must not be shared between goroutines.
func (ex *Expr) Evaluator() func(d float64, axes [3]float64) (float64, error) {
	switch {
	case ex.dist != nil:
		return func(d float64, axes [3]float64) (float64, error) { return ex.dist(d), nil }
	case ex.axes != nil:
		buf := make([]float64, 3)
		return func(d float64, axes [3]float64) (float64, error) {
			copy(buf, axes[:])
			return ex.axes(buf), nil
		}
	}
	env := newEnv(ex.PerAxis)
	buf := make([]float64, 3)
	return func(d float64, axes [3]float64) (float64, error) {
		if ex.PerAxis {
			copy(buf, axes[:])
			env["d"] = buf
		} else {
			env["d"] = d
		}
		out, err := expr.Run(ex.prog, env)
		if err != nil {
			return 0, fmt.Errorf("expression %q: %w", ex.Text, err)
		}
		return toFloat(out)
	}
}

// Eval evaluates the expression once.
func (ex *Expr) Eval(d float64, axes [3]float64) (float64, error) {
	return ex.Evaluator()(d, axes)
}
