package domain

import (
	"fmt"
	"strings"
	"time"
)

type StrategyKind string

const (
	StrategyKind_Momentum      StrategyKind = "momentum"
	StrategyKind_LowVolatility StrategyKind = "low_volatility"
	// scores each window with a user supplied factor expression
	StrategyKind_Expression StrategyKind = "expression"
)

const (
	DefaultWindow    = 30
	DefaultTopN      = 3
	DefaultBenchmark = "SPY"
)

// ParseStrategyKind accepts the canonical names as well as the
// display labels ("Low Volatility")
func ParseStrategyKind(s string) (StrategyKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "momentum":
		return StrategyKind_Momentum, nil
	case "low_volatility", "lowvolatility", "low_vol":
		return StrategyKind_LowVolatility, nil
	case "expression", "factor_expression":
		return StrategyKind_Expression, nil
	}
	return "", ConfigurationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy kind %q", s)}
}

func (k StrategyKind) DisplayName() string {
	switch k {
	case StrategyKind_Momentum:
		return "Momentum"
	case StrategyKind_LowVolatility:
		return "Low Volatility"
	case StrategyKind_Expression:
		return "Factor Expression"
	}
	return string(k)
}

// StrategyConfig is everything the engine needs besides prices
type StrategyConfig struct {
	Kind   StrategyKind
	Window int
	TopN   int
	// only read when Kind is StrategyKind_Expression
	Expression string
}

func (c StrategyConfig) Validate() error {
	switch c.Kind {
	case StrategyKind_Momentum:
	case StrategyKind_LowVolatility:
		if c.Window < 2 {
			return ConfigurationError{Field: "window", Reason: "low volatility needs a window of at least 2 for a sample standard deviation"}
		}
	case StrategyKind_Expression:
		if strings.TrimSpace(c.Expression) == "" {
			return ConfigurationError{Field: "expression", Reason: "expression strategy requires an expression"}
		}
	default:
		return ConfigurationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy kind %q", c.Kind)}
	}
	if c.Window < 1 {
		return ConfigurationError{Field: "window", Reason: fmt.Sprintf("must be positive, got %d", c.Window)}
	}
	if c.TopN < 1 {
		return ConfigurationError{Field: "topN", Reason: fmt.Sprintf("must be positive, got %d", c.TopN)}
	}
	return nil
}

// BacktestRequest is a whole backtest invocation, passed once into
// the backtest service
type BacktestRequest struct {
	Symbols   []string
	Start     time.Time
	End       time.Time
	Strategy  StrategyConfig
	Benchmark string
	// skip the benchmark comparison entirely
	NoBenchmark bool
}

// ParseSymbols splits comma separated user input:
// trimmed, upper-cased, empties dropped. Duplicates are also
// dropped, keeping first occurrence.
func ParseSymbols(input string) []string {
	return NormalizeSymbols(strings.Split(input, ","))
}

func NormalizeSymbols(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Normalize fills defaults and cleans symbols. It does not validate.
func (r BacktestRequest) Normalize() BacktestRequest {
	r.Symbols = NormalizeSymbols(r.Symbols)
	if r.Strategy.Window == 0 {
		r.Strategy.Window = DefaultWindow
	}
	if r.Strategy.TopN == 0 {
		r.Strategy.TopN = min(DefaultTopN, len(r.Symbols))
	}
	if r.Benchmark == "" {
		r.Benchmark = DefaultBenchmark
	}
	r.Benchmark = strings.ToUpper(strings.TrimSpace(r.Benchmark))
	return r
}

func (r BacktestRequest) Validate() error {
	if len(r.Symbols) == 0 {
		return ConfigurationError{Field: "symbols", Reason: "at least one symbol is required"}
	}
	if !r.End.After(r.Start) {
		return ConfigurationError{Field: "end", Reason: fmt.Sprintf("end %s must be after start %s", DateKey(r.End), DateKey(r.Start))}
	}
	if err := r.Strategy.Validate(); err != nil {
		return err
	}
	if r.Strategy.TopN > len(r.Symbols) {
		return ConfigurationError{Field: "topN", Reason: fmt.Sprintf("top %d exceeds %d symbol(s)", r.Strategy.TopN, len(r.Symbols))}
	}
	return nil
}
