package service

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/repository"
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

//go:embed templates/*
var templateFS embed.FS

// ReportService renders a finished backtest. It only reads the result,
// so a rendering failure can never affect the numbers.
type ReportService interface {
	RenderText(result domain.BacktestResult) (string, error)
	RenderHtml(result domain.BacktestResult) (string, error)
	RenderSeriesCsv(result domain.BacktestResult) (string, error)
	EmailReport(ctx context.Context, to string, result domain.BacktestResult) error
}

type reportServiceHandler struct {
	EmailRepository repository.EmailRepository
	text            *texttemplate.Template
	html            *htmltemplate.Template
}

// NewReportService parses the embedded templates. emailRepository may
// be nil when email delivery is not configured.
func NewReportService(emailRepository repository.EmailRepository) (ReportService, error) {
	text, err := texttemplate.ParseFS(templateFS, "templates/report.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text report template: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html report template: %w", err)
	}
	return reportServiceHandler{
		EmailRepository: emailRepository,
		text:            text,
		html:            html,
	}, nil
}

type reportData struct {
	RunID      string
	Tickers    string
	Start      string
	End        string
	Strategy   string
	Expression string
	TopN       int
	Window     int

	Sharpe      string
	TotalReturn string
	Volatility  string
	Periods     int

	HasBenchmark        bool
	Benchmark           string
	BenchmarkSharpe     string
	BenchmarkTotal      string
	BenchmarkVolatility string

	Summary string
}

func formatRatio(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

func formatPercent(f float64) string {
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func newReportData(result domain.BacktestResult) reportData {
	req := result.Request
	summary := result.Strategy.Summary
	data := reportData{
		RunID:       result.RunID.String(),
		Tickers:     strings.Join(req.Symbols, ", "),
		Start:       domain.DateKey(req.Start),
		End:         domain.DateKey(req.End),
		Strategy:    req.Strategy.Kind.DisplayName(),
		TopN:        req.Strategy.TopN,
		Window:      req.Strategy.Window,
		Sharpe:      formatRatio(summary.AnnualizedSharpe),
		TotalReturn: formatPercent(summary.TotalReturn),
		Volatility:  formatPercent(summary.AnnualizedVolatility),
		Periods:     summary.Periods,
		Summary:     "No benchmark comparison was run.",
	}
	if req.Strategy.Kind == domain.StrategyKind_Expression {
		data.Expression = req.Strategy.Expression
	}

	if b := result.Benchmark; b != nil {
		data.HasBenchmark = true
		data.Benchmark = b.Symbol
		data.BenchmarkSharpe = formatRatio(b.Summary.AnnualizedSharpe)
		data.BenchmarkTotal = formatPercent(b.Summary.TotalReturn)
		data.BenchmarkVolatility = formatPercent(b.Summary.AnnualizedVolatility)
		if result.Outperformed() {
			data.Summary = fmt.Sprintf("Your strategy outperformed %s.", b.Symbol)
		} else {
			data.Summary = fmt.Sprintf("Your strategy underperformed %s.", b.Symbol)
		}
	}

	return data
}

func (h reportServiceHandler) RenderText(result domain.BacktestResult) (string, error) {
	var buf bytes.Buffer
	if err := h.text.Execute(&buf, newReportData(result)); err != nil {
		return "", fmt.Errorf("failed to render text report: %w", err)
	}
	return buf.String(), nil
}

func (h reportServiceHandler) RenderHtml(result domain.BacktestResult) (string, error) {
	var buf bytes.Buffer
	if err := h.html.Execute(&buf, newReportData(result)); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.String(), nil
}

type seriesRow struct {
	Date                string  `csv:"date"`
	Holdings            string  `csv:"holdings"`
	PortfolioReturn     float64 `csv:"portfolio_return"`
	Cumulative          float64 `csv:"cumulative"`
	BenchmarkReturn     string  `csv:"benchmark_return"`
	BenchmarkCumulative string  `csv:"benchmark_cumulative"`
}

// RenderSeriesCsv exports the growth of $1 series, one row per scored
// date, with benchmark columns left blank when there is no benchmark
func (h reportServiceHandler) RenderSeriesCsv(result domain.BacktestResult) (string, error) {
	s := result.Strategy
	rows := make([]seriesRow, len(s.PortfolioReturns))
	for i, p := range s.PortfolioReturns {
		rows[i] = seriesRow{
			Date:            domain.DateKey(p.Date),
			PortfolioReturn: p.Value,
			Cumulative:      s.Cumulative[i].Value,
		}
		if i < len(s.Selections) {
			rows[i].Holdings = strings.Join(s.Selections[i].Symbols, "|")
		}
		if b := result.Benchmark; b != nil && i < len(b.Returns) {
			rows[i].BenchmarkReturn = decimal.NewFromFloat(b.Returns[i].Value).String()
			rows[i].BenchmarkCumulative = decimal.NewFromFloat(b.Cumulative[i].Value).String()
		}
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to render series csv: %w", err)
	}
	return out, nil
}

func (h reportServiceHandler) EmailReport(ctx context.Context, to string, result domain.BacktestResult) error {
	if h.EmailRepository == nil {
		return fmt.Errorf("email delivery is not configured")
	}
	html, err := h.RenderHtml(result)
	if err != nil {
		return err
	}
	text, err := h.RenderText(result)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(
		"AlphaFactory report: %s on %s",
		result.Request.Strategy.Kind.DisplayName(),
		strings.Join(result.Request.Symbols, ", "),
	)
	return h.EmailRepository.SendEmail(ctx, to, subject, html, text)
}
