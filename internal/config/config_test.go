package config

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/engine"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "STORE_BACKEND", "MONGODB_URI", "MONGODB_DB_NAME",
		"DATABASE_URL", "DB_SCHEMA_PATH", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
		"FARM_IDS", "TIMEZONE", "STOCK_RECALC_CRON", "DIGEST_CRON",
		"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION",
		"WHATSAPP_DIGEST_RECIPIENT", "PROJECTION_TARGET_WEIGHT", "PROJECTION_CARCASS_PRICE",
		"PROJECTION_YIELD_PERCENT", "PROJECTION_CUSTOM_GCAA",
	} {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		}
		require.NoError(t, os.Unsetenv(key))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendMongoDB, cfg.Store.Backend)
	assert.Equal(t, "feedlot", cfg.MongoDB.DBName)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.StockRecalcCron)
	assert.Equal(t, "0 20 * * 5", cfg.Scheduler.DigestCron)
	assert.Empty(t, cfg.Farms.IDs)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, 450.0, cfg.Projection.TargetWeightKg)
	assert.True(t, cfg.Projection.CarcassPricePerKg.IsZero())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORE_BACKEND=Postgres\n" +
		"DATABASE_URL=postgres://feedlot@localhost/feedlot\n" +
		"FARM_IDS= farm-1, ,farm-2\n" +
		"PROJECTION_CARCASS_PRICE=62.5\n" +
		"PROJECTION_CUSTOM_GCAA=0.9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, []string{"farm-1", "farm-2"}, cfg.Farms.IDs)
	assert.True(t, decimal.RequireFromString("62.5").Equal(cfg.Projection.CarcassPricePerKg))

	params := cfg.Projection.Params()
	assert.Equal(t, engine.GainCustom, params.GainSource)
	assert.Equal(t, 0.9, params.CustomGcaa)
	assert.NoError(t, params.Validate())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECTION_YIELD_PERCENT", "half")

	_, err := Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "PROJECTION_YIELD_PERCENT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Store:     StoreConfig{Backend: BackendMongoDB},
			MongoDB:   MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "feedlot"},
			Farms:     FarmsConfig{Timezone: "UTC"},
			Scheduler: SchedulerConfig{StockRecalcCron: "0 2 * * *", DigestCron: "0 20 * * 5"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "STORE_BACKEND"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Backend = BackendPostgres }, wantErr: "DATABASE_URL"},
		{name: "sheets without credentials", mutate: func(c *Config) { c.Store.Backend = BackendSheets }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "bad timezone", mutate: func(c *Config) { c.Farms.Timezone = "Mars/Olympus" }, wantErr: "TIMEZONE"},
		{name: "whatsapp without phone", mutate: func(c *Config) { c.WhatsApp.AccessToken = "token" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
		{name: "no port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProjectionParamsDefaults(t *testing.T) {
	params := ProjectionConfig{TargetWeightKg: 450, YieldPercent: 52}.Params()
	assert.Equal(t, engine.TargetWeight, params.Mode)
	assert.Equal(t, engine.GainLastInterval, params.GainSource)
	assert.Equal(t, engine.OverheadRecent, params.OverheadSource)
	assert.Equal(t, engine.ValuationCarcass, params.Valuation)
}
