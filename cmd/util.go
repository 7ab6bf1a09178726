package cmd

import (
	"alphafactory/api"
	"alphafactory/internal/calculator"
	"alphafactory/internal/repository"
	"alphafactory/internal/service"
	"alphafactory/internal/util"
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq"
)

// swapped in tests
var (
	openDb             = sql.Open
	newEmailRepository = repository.NewEmailRepository
)

type Dependencies struct {
	Config     *util.Config
	Db         *sql.DB
	ApiHandler *api.ApiHandler

	BacktestService  service.BacktestService
	BenchmarkService service.BenchmarkService
	ReportService    service.ReportService
}

func CloseDependencies(deps *Dependencies) {
	if deps.Db == nil {
		return
	}
	err := deps.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

// NewPriceRepository builds the price source named by the config. The
// returned db is only set for the postgres provider and must be closed
// by the caller.
func NewPriceRepository(cfg util.Config) (repository.PriceRepository, *sql.DB, error) {
	switch repository.PriceProvider(strings.ToLower(cfg.PriceProvider)) {
	case repository.PriceProvider_Yahoo, "":
		return repository.NewYahooPriceRepository(), nil, nil
	case repository.PriceProvider_Alpaca:
		if cfg.Alpaca.ApiKey == "" || cfg.Alpaca.ApiSecret == "" {
			return nil, nil, fmt.Errorf("alpaca provider requires an api key and secret")
		}
		return repository.NewAlpacaPriceRepository(cfg.Alpaca.ApiKey, cfg.Alpaca.ApiSecret, cfg.Alpaca.Endpoint), nil, nil
	case repository.PriceProvider_Csv:
		if cfg.Csv.Path == "" {
			return nil, nil, fmt.Errorf("csv provider requires a path")
		}
		return repository.NewCsvPriceRepository(cfg.Csv.Path), nil, nil
	case repository.PriceProvider_Parquet:
		if cfg.Parquet.DataDir == "" {
			return nil, nil, fmt.Errorf("parquet provider requires a data dir")
		}
		return repository.NewParquetPriceRepository(cfg.Parquet.DataDir), nil, nil
	case repository.PriceProvider_Postgres:
		dbConn, err := openDb("postgres", cfg.Db.ToConnectionStr())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		return repository.NewAdjustedPriceRepository(dbConn), dbConn, nil
	}
	return nil, nil, fmt.Errorf("unknown price provider %q", cfg.PriceProvider)
}

func InitializeDependencies() (*Dependencies, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return InitializeDependenciesFromConfig(*cfg)
}

func InitializeDependenciesFromConfig(cfg util.Config) (*Dependencies, error) {
	priceRepository, dbConn, err := NewPriceRepository(cfg)
	if err != nil {
		return nil, err
	}

	deps, err := newDependencies(cfg, priceRepository, dbConn)
	if err != nil {
		if dbConn != nil {
			dbConn.Close()
		}
		return nil, err
	}
	return deps, nil
}

func newDependencies(cfg util.Config, priceRepository repository.PriceRepository, dbConn *sql.DB) (*Dependencies, error) {
	var err error
	// email is optional; without a verified sender reports can still be
	// rendered, just not sent
	var emailRepository repository.EmailRepository
	if cfg.SES.FromEmail != "" {
		emailRepository, err = newEmailRepository(context.Background(), cfg.SES.Region, cfg.SES.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create email repository: %w", err)
		}
	}

	engine := calculator.NewStrategyEngine()
	priceService := service.NewPriceService(priceRepository)
	benchmarkService := service.NewBenchmarkService(priceRepository, priceService, engine)
	backtestService := service.NewBacktestService(priceService, benchmarkService, engine)
	reportService, err := service.NewReportService(emailRepository)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Config: &cfg,
		Db:     dbConn,
		ApiHandler: &api.ApiHandler{
			BacktestService:  backtestService,
			BenchmarkService: benchmarkService,
			ReportService:    reportService,
		},
		BacktestService:  backtestService,
		BenchmarkService: benchmarkService,
		ReportService:    reportService,
	}, nil
}
