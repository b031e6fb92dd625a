package expression

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine compiles and evaluates field validation rules and formulas.
// Compiled programs are cached by expression text.
type Engine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new expression engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
	}
}

// Compile checks that an expression is syntactically valid. Variables are
// resolved at evaluation time so unknown names are allowed here.
func (e *Engine) Compile(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

// Evaluate compiles (if needed) and runs an expression against the given environment
func (e *Engine) Evaluate(expression string, env map[string]any) (any, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = map[string]any{}
	}
	return expr.Run(program, env)
}

// EvaluateBool runs an expression that must produce a boolean
func (e *Engine) EvaluateBool(expression string, env map[string]any) (bool, error) {
	out, err := e.Evaluate(expression, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, expected bool", expression, out)
	}
	return b, nil
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	options := append([]expr.Option{
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	}, builtins()...)

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, err
	}

	e.programCache[expression] = program
	return program, nil
}

func builtins() []expr.Option {
	return []expr.Option{
		expr.Function("TODAY", func(params ...any) (any, error) {
			return time.Now().Format("2006-01-02"), nil
		}),
		expr.Function("NOW", func(params ...any) (any, error) {
			return time.Now().Format("2006-01-02 15:04:05"), nil
		}),
		expr.Function("LEN", func(params ...any) (any, error) {
			s, err := stringArg("LEN", params)
			if err != nil {
				return nil, err
			}
			return len(s), nil
		}),
		expr.Function("UPPER", func(params ...any) (any, error) {
			s, err := stringArg("UPPER", params)
			if err != nil {
				return nil, err
			}
			return strings.ToUpper(s), nil
		}),
		expr.Function("LOWER", func(params ...any) (any, error) {
			s, err := stringArg("LOWER", params)
			if err != nil {
				return nil, err
			}
			return strings.ToLower(s), nil
		}),
		expr.Function("ROUND", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("ROUND requires 2 arguments")
			}
			val, err := toFloat(params[0])
			if err != nil {
				return nil, fmt.Errorf("ROUND arg 1 must be number")
			}
			prec, err := toFloat(params[1])
			if err != nil {
				return nil, fmt.Errorf("ROUND arg 2 must be integer")
			}
			mult := math.Pow(10, math.Trunc(prec))
			return math.Round(val*mult) / mult, nil
		}),
		// PMT(rate, periods, principal) is the level payment of an amortizing loan
		expr.Function("PMT", func(params ...any) (any, error) {
			if len(params) != 3 {
				return nil, fmt.Errorf("PMT requires 3 arguments (rate, periods, principal)")
			}
			var nums [3]float64
			for i, p := range params {
				n, err := toFloat(p)
				if err != nil {
					return nil, fmt.Errorf("PMT arg %d must be number", i+1)
				}
				nums[i] = n
			}
			rate, periods, principal := nums[0], nums[1], nums[2]
			if periods <= 0 {
				return nil, fmt.Errorf("PMT periods must be positive")
			}
			if rate == 0 {
				return principal / periods, nil
			}
			return principal * rate / (1 - math.Pow(1+rate, -periods)), nil
		}),
		expr.Function("COALESCE", func(params ...any) (any, error) {
			for _, p := range params {
				if p != nil && p != "" {
					return p, nil
				}
			}
			return nil, nil
		}),
		expr.Function("IF", func(params ...any) (any, error) {
			if len(params) != 3 {
				return nil, fmt.Errorf("IF requires 3 arguments (condition, true_value, false_value)")
			}
			cond, ok := params[0].(bool)
			if !ok {
				return nil, fmt.Errorf("IF condition must be boolean")
			}
			if cond {
				return params[1], nil
			}
			return params[2], nil
		}),
	}
}

func stringArg(fn string, params []any) (string, error) {
	if len(params) != 1 {
		return "", fmt.Errorf("%s requires 1 argument", fn)
	}
	s, ok := params[0].(string)
	if !ok {
		return "", fmt.Errorf("%s argument must be string", fn)
	}
	return s, nil
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
