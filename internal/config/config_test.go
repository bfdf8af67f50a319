package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "2s", cfg.Schedule.Tick)
	assert.Equal(t, "09:00", cfg.Schedule.Morning)
	assert.Equal(t, "17:00", cfg.Schedule.Evening)
	assert.Equal(t, "VN-INDEX", cfg.Market.ActiveSymbol)
	assert.Equal(t, []string{"FPT", "VCB", "HPG", "MWG", "TCB"}, cfg.Market.ResearchSymbols)
	assert.Len(t, cfg.Portfolio, 3)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
llm:
  provider: openai
  api_key: from-file
  model: gpt-4o-mini
schedule:
  morning: "08:30"
market:
  watchlist: [SSI]
portfolio:
  - symbol: FPT
    shares: 10
    avg_price: 100000
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("LLM_MODEL", "override-model")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "override-model", cfg.LLM.Model)
	assert.Equal(t, "08:30", cfg.Schedule.Morning)
	assert.Equal(t, []string{"SSI"}, cfg.Market.Watchlist)
	require.Len(t, cfg.Portfolio, 1)
	assert.Equal(t, int64(10), cfg.Portfolio[0].Shares)
}

func TestLoad_ExplicitZeroKnobsAreKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
market:
  simulation_amplitude: 0
  max_jump_pct: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Market.SimulationAmplitude)
	assert.Zero(t, cfg.Market.MaxJumpPct)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Market.SimulationAmplitude)
	assert.Equal(t, 0.5, cfg.Market.MaxJumpPct)
}

func TestLoad_NormalizesSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
market:
  index_symbol: vn-index
  watchlist: [" ssi", tcb]
  seed_prices:
    fpt: 135000
portfolio:
  - symbol: fpt
    shares: 10
    avg_price: 100000
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "VN-INDEX", cfg.Market.IndexSymbol)
	assert.Equal(t, "VN-INDEX", cfg.Market.ActiveSymbol)
	assert.Equal(t, []string{"SSI", "TCB"}, cfg.Market.Watchlist)
	assert.Equal(t, map[string]float64{"FPT": 135000}, cfg.Market.SeedPrices)
	require.Len(t, cfg.Portfolio, 1)
	assert.Equal(t, "FPT", cfg.Portfolio[0].Symbol)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LLM.APIKey = "k"
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "claude" }},
		{"bad tick", func(c *Config) { c.Schedule.Tick = "soon" }},
		{"tick too fast", func(c *Config) { c.Schedule.Tick = "10ms" }},
		{"bad morning", func(c *Config) { c.Schedule.Morning = "9am" }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"bad source", func(c *Config) { c.Indicators.Source = "bloomberg" }},
		{"duplicate holding", func(c *Config) {
			c.Portfolio = append(c.Portfolio, c.Portfolio[0])
		}},
		{"zero avg price", func(c *Config) { c.Portfolio[0].AvgPrice = 0 }},
		{"negative jump guard", func(c *Config) { c.Market.MaxJumpPct = -0.1 }},
	}

	assert.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("17:05")
	require.NoError(t, err)
	assert.Equal(t, 17, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("25:00")
	assert.Error(t, err)
}
