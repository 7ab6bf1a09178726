package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	PriceProvider string           `yaml:"priceProvider"`
	Csv           CsvConfig        `yaml:"csv"`
	Parquet       ParquetConfig    `yaml:"parquet"`
	Alpaca        AlpacaSecrets    `yaml:"alpaca"`
	Db            DbSecrets        `yaml:"db"`
	SES           SESConfig        `yaml:"ses"`
	Api           ApiConfig        `yaml:"api"`
	Backtest      BacktestDefaults `yaml:"backtest"`
}

type CsvConfig struct {
	Path string `yaml:"path"`
}

type ParquetConfig struct {
	DataDir string `yaml:"dataDir"`
}

type AlpacaSecrets struct {
	ApiKey    string `yaml:"apiKey"`
	ApiSecret string `yaml:"apiSecret"`
	Endpoint  string `yaml:"endpoint"`
}

type DbSecrets struct {
	Host      string `yaml:"host"`
	User      string `yaml:"user"`
	Port      string `yaml:"port"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	EnableSsl bool   `yaml:"enableSsl"`
}

func (t DbSecrets) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

type SESConfig struct {
	Region    string `yaml:"region"`
	FromEmail string `yaml:"fromEmail"`
}

type ApiConfig struct {
	Port int `yaml:"port"`
}

type BacktestDefaults struct {
	Window    int    `yaml:"window"`
	TopN      int    `yaml:"topN"`
	Benchmark string `yaml:"benchmark"`
}

func defaultConfig() Config {
	return Config{
		PriceProvider: "yahoo",
		Api: ApiConfig{
			Port: 3009,
		},
		SES: SESConfig{
			Region: "us-east-1",
		},
		Backtest: BacktestDefaults{
			Window:    30,
			TopN:      3,
			Benchmark: "SPY",
		},
	}
}

// ConfigFile picks the config file for the current ALPHA_ENV.
// ALPHA_CONFIG overrides it.
func ConfigFile() string {
	if f := os.Getenv("ALPHA_CONFIG"); f != "" {
		return f
	}
	switch os.Getenv("ALPHA_ENV") {
	case "dev":
		return "config-dev.yaml"
	case "test":
		return "config-test.yaml"
	}
	return "/go/src/app/config.yaml"
}

// LoadConfig reads .env (if present), then the yaml file for the current
// environment, then env overrides. A missing yaml file is not an error,
// since the yahoo provider needs no credentials.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return LoadConfigFile(ConfigFile())
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	f, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(f, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	strOverrides := map[string]*string{
		"PRICE_PROVIDER":    &cfg.PriceProvider,
		"PRICE_CSV_PATH":    &cfg.Csv.Path,
		"PARQUET_DATA_DIR":  &cfg.Parquet.DataDir,
		"ALPACA_API_KEY":    &cfg.Alpaca.ApiKey,
		"ALPACA_API_SECRET": &cfg.Alpaca.ApiSecret,
		"ALPACA_ENDPOINT":   &cfg.Alpaca.Endpoint,
		"DB_HOST":           &cfg.Db.Host,
		"DB_PORT":           &cfg.Db.Port,
		"DB_USER":           &cfg.Db.User,
		"DB_PASSWORD":       &cfg.Db.Password,
		"DB_NAME":           &cfg.Db.Database,
		"SES_REGION":        &cfg.SES.Region,
		"SES_FROM_EMAIL":    &cfg.SES.FromEmail,
	}
	for key, field := range strOverrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Api.Port = port
	}

	return nil
}
