package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/engine"
)

// Supported record store backends.
const (
	BackendMongoDB  = "mongodb"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Store      StoreConfig
	MongoDB    MongoDBConfig
	Postgres   PostgresConfig
	Sheets     SheetsConfig
	Farms      FarmsConfig
	Scheduler  SchedulerConfig
	WhatsApp   WhatsAppConfig
	Projection ProjectionConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// PostgresConfig holds settings for the relational record store.
type PostgresConfig struct {
	DatabaseURL string
	SchemaPath  string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// FarmsConfig lists the farms scheduled work runs for and their local time zone.
type FarmsConfig struct {
	IDs      []string
	Timezone string
}

// SchedulerConfig holds the cron expressions of the scheduled jobs.
type SchedulerConfig struct {
	StockRecalcCron string
	DigestCron      string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// Digest delivery is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether digest delivery is configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
}

// ProjectionConfig holds the projection defaults used by the digest.
type ProjectionConfig struct {
	TargetWeightKg    float64
	CarcassPricePerKg decimal.Decimal
	YieldPercent      float64
	CustomGcaa        float64
}

// Params converts the defaults into projection parameters. A positive
// CustomGcaa replaces the last measured growth rate.
func (p ProjectionConfig) Params() engine.ProjectionParams {
	params := engine.ProjectionParams{
		Mode:              engine.TargetWeight,
		TargetWeightKg:    p.TargetWeightKg,
		GainSource:        engine.GainLastInterval,
		OverheadSource:    engine.OverheadRecent,
		Valuation:         engine.ValuationCarcass,
		CarcassPricePerKg: p.CarcassPricePerKg,
		YieldPercent:      p.YieldPercent,
	}
	if p.CustomGcaa > 0 {
		params.GainSource = engine.GainCustom
		params.CustomGcaa = p.CustomGcaa
	}
	return params
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "feedlot"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SchemaPath:  os.Getenv("DB_SCHEMA_PATH"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Farms: FarmsConfig{
			IDs:      splitList(os.Getenv("FARM_IDS")),
			Timezone: getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		Scheduler: SchedulerConfig{
			StockRecalcCron: getenvWithDefault("STOCK_RECALC_CRON", "0 2 * * *"),
			DigestCron:      getenvWithDefault("DIGEST_CRON", "0 20 * * 5"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_DIGEST_RECIPIENT"),
		},
	}

	projection, err := loadProjection()
	if err != nil {
		return nil, err
	}
	cfg.Projection = projection

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadProjection() (ProjectionConfig, error) {
	var p ProjectionConfig
	var err error

	if p.TargetWeightKg, err = getenvFloat("PROJECTION_TARGET_WEIGHT", 450); err != nil {
		return p, err
	}
	if p.YieldPercent, err = getenvFloat("PROJECTION_YIELD_PERCENT", 52); err != nil {
		return p, err
	}
	if p.CustomGcaa, err = getenvFloat("PROJECTION_CUSTOM_GCAA", 0); err != nil {
		return p, err
	}
	price := getenvWithDefault("PROJECTION_CARCASS_PRICE", "0")
	if p.CarcassPricePerKg, err = decimal.NewFromString(price); err != nil {
		return p, fmt.Errorf("PROJECTION_CARCASS_PRICE %q: %w", price, err)
	}
	return p, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case BackendPostgres:
		if c.Postgres.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be provided")
		}
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Scheduler.StockRecalcCron == "" {
		return errors.New("STOCK_RECALC_CRON must be provided")
	}
	if c.Scheduler.DigestCron == "" {
		return errors.New("DIGEST_CRON must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

// Location resolves the farm time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Farms.Timezone == "" {
		return nil, errors.New("TIMEZONE must be provided")
	}
	loc, err := time.LoadLocation(c.Farms.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Farms.Timezone, err)
	}
	return loc, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, value, err)
	}
	return f, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
