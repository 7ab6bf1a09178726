package calculator

import (
	"alphafactory/internal/domain"
	"fmt"
	"math"

	"github.com/maja42/goval"
	"github.com/montanaflynn/stats"
)

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected a number, got %v (%T)", v, v)
}

func expressionFunctions() map[string]goval.ExpressionFunction {
	unary := func(name string, f func(float64) float64) goval.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return 0, fmt.Errorf("%s needs 1 arg, got %d", name, len(args))
			}
			x, err := toFloat(args[0])
			if err != nil {
				return 0, fmt.Errorf("%s: %w", name, err)
			}
			return f(x), nil
		}
	}
	binary := func(name string, f func(float64, float64) float64) goval.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return 0, fmt.Errorf("%s needs 2 args, got %d", name, len(args))
			}
			a, err := toFloat(args[0])
			if err != nil {
				return 0, fmt.Errorf("%s: %w", name, err)
			}
			b, err := toFloat(args[1])
			if err != nil {
				return 0, fmt.Errorf("%s: %w", name, err)
			}
			return f(a, b), nil
		}
	}

	return map[string]goval.ExpressionFunction{
		"abs":  unary("abs", math.Abs),
		"sqrt": unary("sqrt", math.Sqrt),
		"log":  unary("log", math.Log),
		"min":  binary("min", math.Min),
		"max":  binary("max", math.Max),
	}
}

// windowVariables are the names available to a factor expression
func windowVariables(window []float64) (map[string]interface{}, error) {
	mean, err := stats.Mean(window)
	if err != nil {
		return nil, err
	}
	// undefined for a single observation, same as pandas
	stdev := math.NaN()
	if len(window) > 1 {
		stdev, err = stats.StandardDeviationSample(window)
		if err != nil {
			return nil, err
		}
	}
	growth := 1.0
	for _, r := range window {
		growth *= 1 + r
	}

	return map[string]interface{}{
		"mean":   mean,
		"stdev":  stdev,
		"last":   window[len(window)-1],
		"growth": growth - 1,
		"window": len(window),
	}, nil
}

// ComputeExpressionScores scores each trailing window with a factor
// expression, e.g. "mean / stdev" or "growth - 0.5 * stdev"
func ComputeExpressionScores(returns domain.ReturnPanel, expression string, window int) (domain.ScorePanel, error) {
	functions := expressionFunctions()
	eval := goval.NewEvaluator()

	// catch syntax errors once, before scoring every cell
	probe, err := windowVariables([]float64{0.01, 0.02})
	if err != nil {
		return domain.ScorePanel{}, err
	}
	if _, err := eval.Evaluate(expression, probe, functions); err != nil {
		return domain.ScorePanel{}, domain.ConfigurationError{
			Field:  "expression",
			Reason: fmt.Sprintf("failed to evaluate %q: %s", expression, err.Error()),
		}
	}

	return rollingScores(returns, window, func(w []float64) (float64, error) {
		variables, err := windowVariables(w)
		if err != nil {
			return 0, err
		}
		out, err := eval.Evaluate(expression, variables, functions)
		if err != nil {
			// runtime failures such as division by zero leave the
			// symbol unscored for this date
			return math.NaN(), nil
		}
		score, err := toFloat(out)
		if err != nil {
			return 0, domain.ConfigurationError{
				Field:  "expression",
				Reason: err.Error(),
			}
		}
		return score, nil
	})
}
