package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"VNIndexAgent/internal/model"
)

// Config holds all application configuration.
type Config struct {
	LLM struct {
		Provider         string  `yaml:"provider"` // gemini or openai
		APIKey           string  `yaml:"api_key"`
		Model            string  `yaml:"model"`
		BaseURL          string  `yaml:"base_url"`
		Temperature      float32 `yaml:"temperature"`
		PriceTemperature float32 `yaml:"price_temperature"`
		HistoryTurns     int     `yaml:"history_turns"`
	} `yaml:"llm"`
	Schedule struct {
		Tick        string `yaml:"tick"`
		Morning     string `yaml:"morning"`
		Evening     string `yaml:"evening"`
		RefreshCron string `yaml:"refresh_cron"`
		ReviewCron  string `yaml:"review_cron"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"schedule"`
	Market struct {
		IndexSymbol           string             `yaml:"index_symbol"`
		ActiveSymbol          string             `yaml:"active_symbol"`
		Watchlist             []string           `yaml:"watchlist"`
		ResearchSymbols       []string           `yaml:"research_symbols"`
		RecommendationSymbols []string           `yaml:"recommendation_symbols"`
		DefaultPrice          float64            `yaml:"default_price"`
		SeedPrices            map[string]float64 `yaml:"seed_prices"`
		SimulationAmplitude   float64            `yaml:"simulation_amplitude"`
		MaxJumpPct            float64            `yaml:"max_jump_pct"`
	} `yaml:"market"`
	Indicators struct {
		Source string `yaml:"source"` // synthetic or yahoo
	} `yaml:"indicators"`
	Portfolio []model.PortfolioItem `yaml:"portfolio"`
	Telegram  struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		MarksFile  string `yaml:"marks_file"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`

	// zero is a meaningful value for these; track whether the file set them
	amplitudeSet bool
	maxJumpSet   bool
}

// explicit records which zero-valued knobs appear in the file.
type explicit struct {
	Market struct {
		SimulationAmplitude *float64 `yaml:"simulation_amplitude"`
		MaxJumpPct          *float64 `yaml:"max_jump_pct"`
	} `yaml:"market"`
}

// Load reads .env, then the YAML file, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var ex explicit
		if err := yaml.Unmarshal(data, &ex); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.amplitudeSet = ex.Market.SimulationAmplitude != nil
		cfg.maxJumpSet = ex.Market.MaxJumpPct != nil
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_HISTORY_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.HistoryTurns = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SCHEDULE_TIMEZONE"); v != "" {
		c.Schedule.Timezone = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.PriceTemperature == 0 {
		c.LLM.PriceTemperature = 0.1
	}
	if c.Schedule.Tick == "" {
		c.Schedule.Tick = "2s"
	}
	if c.Schedule.Morning == "" {
		c.Schedule.Morning = "09:00"
	}
	if c.Schedule.Evening == "" {
		c.Schedule.Evening = "17:00"
	}
	if c.Market.IndexSymbol == "" {
		c.Market.IndexSymbol = "VN-INDEX"
	}
	if c.Market.ActiveSymbol == "" {
		c.Market.ActiveSymbol = c.Market.IndexSymbol
	}
	if c.Market.Watchlist == nil {
		c.Market.Watchlist = []string{"MWG", "TCB", "VPB", "VNM"}
	}
	if c.Market.ResearchSymbols == nil {
		c.Market.ResearchSymbols = []string{"FPT", "VCB", "HPG", "MWG", "TCB"}
	}
	if c.Market.RecommendationSymbols == nil {
		c.Market.RecommendationSymbols = []string{"FPT", "VCB", "HPG", "MWG", "VNM", "TCB", "VPB"}
	}
	if c.Market.DefaultPrice == 0 {
		c.Market.DefaultPrice = 50000
	}
	if c.Market.SeedPrices == nil {
		c.Market.SeedPrices = map[string]float64{
			"VN-INDEX": 1258.40,
			"FPT":      135000,
			"HPG":      29500,
			"VCB":      92000,
			"MWG":      45000,
		}
	}
	if c.Market.SimulationAmplitude == 0 && !c.amplitudeSet {
		c.Market.SimulationAmplitude = 0.001
	}
	if c.Market.MaxJumpPct == 0 && !c.maxJumpSet {
		c.Market.MaxJumpPct = 0.5
	}
	if c.Indicators.Source == "" {
		c.Indicators.Source = "synthetic"
	}
	if c.Portfolio == nil {
		c.Portfolio = []model.PortfolioItem{
			{Symbol: "FPT", Shares: 1000, AvgPrice: 98000, CurrentPrice: 135000, Sector: "Công nghệ"},
			{Symbol: "HPG", Shares: 2000, AvgPrice: 28000, CurrentPrice: 29500, Sector: "Thép"},
			{Symbol: "VCB", Shares: 500, AvgPrice: 85000, CurrentPrice: 92000, Sector: "Ngân hàng"},
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.MarksFile == "" {
		c.Database.MarksFile = "data/schedule_marks.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// normalize uppercases every ticker so config symbols match quote keys.
func (c *Config) normalize() {
	c.Market.IndexSymbol = symbol(c.Market.IndexSymbol)
	c.Market.ActiveSymbol = symbol(c.Market.ActiveSymbol)
	for _, list := range [][]string{c.Market.Watchlist, c.Market.ResearchSymbols, c.Market.RecommendationSymbols} {
		for i := range list {
			list[i] = symbol(list[i])
		}
	}
	if len(c.Market.SeedPrices) > 0 {
		seed := make(map[string]float64, len(c.Market.SeedPrices))
		for k, v := range c.Market.SeedPrices {
			seed[symbol(k)] = v
		}
		c.Market.SeedPrices = seed
	}
	for i := range c.Portfolio {
		c.Portfolio[i].Symbol = symbol(c.Portfolio[i].Symbol)
	}
}

func symbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if _, err := c.TickInterval(); err != nil {
		return err
	}
	if _, _, err := ParseClock(c.Schedule.Morning); err != nil {
		return fmt.Errorf("schedule.morning: %w", err)
	}
	if _, _, err := ParseClock(c.Schedule.Evening); err != nil {
		return fmt.Errorf("schedule.evening: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Indicators.Source {
	case "synthetic", "yahoo":
	default:
		return fmt.Errorf("indicators.source %q is not supported", c.Indicators.Source)
	}
	if c.Market.SimulationAmplitude < 0 || c.Market.SimulationAmplitude > 0.05 {
		return fmt.Errorf("market.simulation_amplitude must be within [0, 0.05]")
	}
	if c.Market.MaxJumpPct < 0 {
		return fmt.Errorf("market.max_jump_pct must be >= 0")
	}
	seen := make(map[string]bool, len(c.Portfolio))
	for _, item := range c.Portfolio {
		sym := symbol(item.Symbol)
		if sym == "" {
			return fmt.Errorf("portfolio: symbol is required")
		}
		if seen[sym] {
			return fmt.Errorf("portfolio: duplicate symbol %s", sym)
		}
		seen[sym] = true
		if item.Shares < 0 {
			return fmt.Errorf("portfolio %s: shares must be >= 0", sym)
		}
		if item.AvgPrice <= 0 {
			return fmt.Errorf("portfolio %s: avg_price must be positive", sym)
		}
	}
	return nil
}

// TickInterval parses the controller polling interval.
func (c *Config) TickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Schedule.Tick)
	if err != nil {
		return 0, fmt.Errorf("schedule.tick: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("schedule.tick must be at least 1s")
	}
	return d, nil
}

// Location returns the timezone used for wall-clock triggers. Empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
