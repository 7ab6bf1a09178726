package api

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type BacktestRequest struct {
	Symbols []string `json:"symbols"`
	// comma separated alternative to symbols, e.g. "AAPL, MSFT"
	Tickers    string `json:"tickers"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Strategy   string `json:"strategy"`
	Window     int    `json:"window"`
	TopN       int    `json:"topN"`
	Expression string `json:"expression"`

	Benchmark   string `json:"benchmark"`
	NoBenchmark bool   `json:"noBenchmark"`
	// one of "text", "html"
	Report string `json:"report"`
}

type summaryResponse struct {
	AnnualizedSharpe     float64 `json:"annualizedSharpe"`
	TotalReturn          float64 `json:"totalReturn"`
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	Periods              int     `json:"periods"`
	Start                string  `json:"start"`
	End                  string  `json:"end"`
}

type benchmarkSummaryResponse struct {
	Symbol  string          `json:"symbol"`
	Summary summaryResponse `json:"summary"`
}

type seriesPointResponse struct {
	Date                string   `json:"date"`
	Holdings            []string `json:"holdings"`
	Return              float64  `json:"return"`
	Cumulative          float64  `json:"cumulative"`
	BenchmarkReturn     *float64 `json:"benchmarkReturn,omitempty"`
	BenchmarkCumulative *float64 `json:"benchmarkCumulative,omitempty"`
}

type BacktestResponse struct {
	RunID        string                    `json:"runID"`
	Strategy     string                    `json:"strategy"`
	Symbols      []string                  `json:"symbols"`
	Window       int                       `json:"window"`
	TopN         int                       `json:"topN"`
	Summary      summaryResponse           `json:"summary"`
	Benchmark    *benchmarkSummaryResponse `json:"benchmark,omitempty"`
	Outperformed *bool                     `json:"outperformed,omitempty"`
	Series       []seriesPointResponse     `json:"series"`
	Report       string                    `json:"report,omitempty"`
	Profile      *domain.Profile           `json:"profile,omitempty"`
}

func (req BacktestRequest) toDomain() (*domain.BacktestRequest, error) {
	start, err := time.Parse(time.DateOnly, req.Start)
	if err != nil {
		return nil, domain.ConfigurationError{Field: "start", Reason: err.Error()}
	}
	end, err := time.Parse(time.DateOnly, req.End)
	if err != nil {
		return nil, domain.ConfigurationError{Field: "end", Reason: err.Error()}
	}

	kind := domain.StrategyKind_Momentum
	if req.Strategy != "" {
		kind, err = domain.ParseStrategyKind(req.Strategy)
		if err != nil {
			return nil, err
		}
	}

	symbols := domain.NormalizeSymbols(req.Symbols)
	if len(symbols) == 0 {
		symbols = domain.ParseSymbols(req.Tickers)
	}

	return &domain.BacktestRequest{
		Symbols: symbols,
		Start:   start,
		End:     end,
		Strategy: domain.StrategyConfig{
			Kind:       kind,
			Window:     req.Window,
			TopN:       req.TopN,
			Expression: req.Expression,
		},
		Benchmark:   req.Benchmark,
		NoBenchmark: req.NoBenchmark,
	}, nil
}

func newSummaryResponse(s domain.PerformanceSummary) summaryResponse {
	return summaryResponse{
		AnnualizedSharpe:     s.AnnualizedSharpe,
		TotalReturn:          s.TotalReturn,
		AnnualizedVolatility: s.AnnualizedVolatility,
		Periods:              s.Periods,
		Start:                domain.DateKey(s.Start),
		End:                  domain.DateKey(s.End),
	}
}

func newBacktestResponse(result domain.BacktestResult) BacktestResponse {
	s := result.Strategy
	out := BacktestResponse{
		RunID:    result.RunID.String(),
		Strategy: result.Request.Strategy.Kind.DisplayName(),
		Symbols:  result.Request.Symbols,
		Window:   result.Request.Strategy.Window,
		TopN:     result.Request.Strategy.TopN,
		Summary:  newSummaryResponse(s.Summary),
		Series:   make([]seriesPointResponse, len(s.PortfolioReturns)),
	}

	for i, p := range s.PortfolioReturns {
		out.Series[i] = seriesPointResponse{
			Date:       domain.DateKey(p.Date),
			Return:     p.Value,
			Cumulative: s.Cumulative[i].Value,
		}
		if i < len(s.Selections) {
			out.Series[i].Holdings = s.Selections[i].Symbols
		}
	}

	if b := result.Benchmark; b != nil {
		out.Benchmark = &benchmarkSummaryResponse{
			Symbol:  b.Symbol,
			Summary: newSummaryResponse(b.Summary),
		}
		outperformed := result.Outperformed()
		out.Outperformed = &outperformed
		for i := range out.Series {
			if i >= len(b.Returns) {
				break
			}
			r, c := b.Returns[i].Value, b.Cumulative[i].Value
			out.Series[i].BenchmarkReturn = &r
			out.Series[i].BenchmarkCumulative = &c
		}
	}

	return out
}

func (h ApiHandler) backtest(c *gin.Context) {
	profile, endProfile := domain.NewProfile()
	ctx := domain.WithProfile(c.Request.Context(), profile)
	log := logger.FromContext(ctx)

	var requestBody BacktestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	req, err := requestBody.toDomain()
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := h.BacktestService.Backtest(ctx, *req)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	response := newBacktestResponse(*result)

	// a report that fails to render is logged and left out; the numbers
	// still go back
	switch strings.ToLower(requestBody.Report) {
	case "":
	case "text":
		response.Report, err = h.ReportService.RenderText(*result)
	case "html":
		response.Report, err = h.ReportService.RenderHtml(*result)
	default:
		err = fmt.Errorf("unknown report format %q", requestBody.Report)
	}
	if err != nil {
		log.Warnw("failed to render report", "error", err.Error())
	}

	endProfile()
	response.Profile = profile

	c.JSON(200, response)
}
