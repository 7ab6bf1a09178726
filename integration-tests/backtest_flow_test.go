package integration_tests

import (
	"alphafactory/api"
	"alphafactory/cmd"
	"alphafactory/internal/util"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func hitEndpoint(baseUrl string, route string, method string, payload interface{}, target interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, baseUrl+"/"+route, bytes.NewReader(payloadBytes))
	if err != nil {
		return err
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	type ErrorResponse struct {
		Error string `json:"error"`
	}
	errResponse := ErrorResponse{}
	if err := json.Unmarshal(responseBody, &errResponse); err != nil {
		return err
	}
	if errResponse.Error != "" {
		return fmt.Errorf("failed with status %d and response body: %s", resp.StatusCode, string(responseBody))
	}

	return json.Unmarshal(responseBody, target)
}

func startServer(t *testing.T, cfg util.Config) *httptest.Server {
	gin.SetMode(gin.TestMode)
	deps, err := cmd.InitializeDependenciesFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { cmd.CloseDependencies(deps) })

	server := httptest.NewServer(deps.ApiHandler.InitializeRouterEngine())
	t.Cleanup(server.Close)
	return server
}

func runBacktestFlow(t *testing.T, server *httptest.Server) {
	startTime := time.Now()

	request := api.BacktestRequest{
		Tickers:  "AAPL, GOOG, META, MSFT",
		Start:    "2024-01-01",
		End:      "2024-03-31",
		Strategy: "momentum",
		Window:   10,
		TopN:     2,
		Report:   "html",
	}
	response := api.BacktestResponse{}
	err := hitEndpoint(server.URL, "backtest", http.MethodPost, request, &response)
	require.NoError(t, err)
	elapsed := time.Since(startTime).Milliseconds()

	// 60 trading days, one lost to returns and window-1 to scoring
	require.Len(t, response.Series, 60-1-(10-1))
	for _, point := range response.Series {
		require.Len(t, point.Holdings, 2)
	}
	require.NotNil(t, response.Benchmark)
	require.Equal(t, "SPY", response.Benchmark.Symbol)
	require.Equal(t, response.Summary.Start, response.Benchmark.Summary.Start)
	require.Contains(t, response.Report, "<html>")

	lowVol := api.BacktestResponse{}
	request.Strategy = "Low Volatility"
	request.Report = ""
	err = hitEndpoint(server.URL, "backtest", http.MethodPost, request, &lowVol)
	require.NoError(t, err)
	require.Equal(t, "Low Volatility", lowVol.Strategy)

	benchmark := map[string]float64{}
	err = hitEndpoint(server.URL, "benchmark", http.MethodPost, map[string]string{
		"symbol":      "SPY",
		"start":       "2024-01-01",
		"end":         "2024-03-31",
		"granularity": "weekly",
	}, &benchmark)
	require.NoError(t, err)
	require.Equal(t, 0.0, benchmark["2024-01-02"])

	require.Less(t, elapsed, int64(25e3))
}

func Test_backtestFlow_parquet(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, SeedParquet(dataDir))

	server := startServer(t, util.Config{
		PriceProvider: "parquet",
		Parquet:       util.ParquetConfig{DataDir: dataDir},
	})
	runBacktestFlow(t, server)
}

func Test_backtestFlow_csv(t *testing.T) {
	server := startServer(t, util.Config{
		PriceProvider: "csv",
		Csv:           util.CsvConfig{Path: samplePricesFile},
	})
	runBacktestFlow(t, server)
}

func testDbSecrets() util.DbSecrets {
	return util.DbSecrets{
		Host:     "localhost",
		Port:     "5440",
		User:     "postgres",
		Password: "postgres",
		Database: "postgres_test",
	}
}

func Test_backtestFlow_postgres(t *testing.T) {
	secrets := testDbSecrets()
	db, err := sql.Open("postgres", secrets.ToConnectionStr())
	require.NoError(t, err)
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("test db unavailable: %v", err)
	}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, SeedPostgres(tx))
	require.NoError(t, tx.Commit())

	server := startServer(t, util.Config{
		PriceProvider: "postgres",
		Db:            secrets,
	})
	runBacktestFlow(t, server)
}
