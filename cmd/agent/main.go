package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"VNIndexAgent/internal/app"
	"VNIndexAgent/internal/assistant"
	"VNIndexAgent/internal/collector"
	"VNIndexAgent/internal/config"
	"VNIndexAgent/internal/indicator"
	"VNIndexAgent/internal/llm"
	"VNIndexAgent/internal/logger"
	"VNIndexAgent/internal/marks"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/notifier"
	"VNIndexAgent/internal/pricefeed"
	"VNIndexAgent/internal/recommend"
	"VNIndexAgent/internal/recorder"
	"VNIndexAgent/internal/scheduler"
	"VNIndexAgent/internal/server"
	"VNIndexAgent/internal/state"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	lg := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(lg)

	if err := cfg.Validate(); err != nil {
		lg.Fatal().Err(err).Msg("config validation")
	}
	lg.Info().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.Model).Msg("VN-Index agent starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("init llm client")
	}

	rec, markStore := openStorage(cfg, lg)
	defer rec.Close()

	asst := assistant.New(client, newIndicators(cfg, lg), assistant.Config{
		Temperature:     cfg.LLM.Temperature,
		HistoryTurns:    cfg.LLM.HistoryTurns,
		ResearchSymbols: cfg.Market.ResearchSymbols,
		DefaultPrice:    cfg.Market.DefaultPrice,
	}, lg)

	store := state.NewStore(app.InitialState(model.PriceTable(cfg.Market.SeedPrices), cfg.Portfolio, cfg.Market.ActiveSymbol))
	a := app.New(app.Deps{
		Store:     store,
		Assistant: asst,
		Prices:    pricefeed.NewFetcher(client, cfg.LLM.PriceTemperature, lg),
		Extractor: recommend.NewExtractor(cfg.Market.RecommendationSymbols),
		Simulator: pricefeed.NewSimulator(cfg.Market.SimulationAmplitude, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))),
		Recorder:  rec,
	}, app.Market{
		IndexSymbol: cfg.Market.IndexSymbol,
		Watchlist:   cfg.Market.Watchlist,
		MaxJumpPct:  cfg.Market.MaxJumpPct,
	}, lg)

	// Telegram is optional
	var fwd *notifier.Forwarder
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, lg)
		fwd = notifier.NewForwarder(ctx, tn, 3, lg)
		store.Subscribe(fwd.Listen)
		go tn.StartPolling(ctx, a.HandleCommand)
		lg.Info().Msg("telegram polling started")
	} else {
		lg.Warn().Msg("telegram not configured, forwarding disabled")
	}

	sched, err := newScheduler(ctx, cfg, markStore, a, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("init scheduler")
	}
	sched.Start()

	go a.RefreshPrices(ctx)

	srv := server.New(server.Config{Addr: cfg.Server.Addr, Log: lg, App: a})
	go func() {
		if err := srv.Start(); err != nil {
			lg.Error().Err(err).Msg("http server failed")
			cancel()
		}
	}()

	lg.Info().Msg("VN-Index agent is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		lg.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	sched.Stop()
	if fwd != nil {
		fwd.Wait()
	}
	lg.Info().Msg("VN-Index agent stopped")
}

// openStorage returns the audit recorder and the schedule mark store. SQLite
// serves both when configured; otherwise marks go to a JSON file.
func openStorage(cfg *config.Config, lg zerolog.Logger) (recorder.Recorder, marks.Store) {
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, lg)
		if err == nil {
			return sr, sr
		}
		lg.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
	}
	return recorder.NewNoopRecorder(), marks.NewFileStore(cfg.Database.MarksFile)
}

func newIndicators(cfg *config.Config, lg zerolog.Logger) indicator.Generator {
	synthetic := indicator.NewSynthetic(nil)
	if cfg.Indicators.Source == "yahoo" {
		return indicator.NewCandles(collector.NewYahooFetcher(cfg.Proxy), synthetic, lg)
	}
	return synthetic
}

func newScheduler(ctx context.Context, cfg *config.Config, store marks.Store, a *app.App, lg zerolog.Logger) (*scheduler.Scheduler, error) {
	mh, mm, err := config.ParseClock(cfg.Schedule.Morning)
	if err != nil {
		return nil, err
	}
	eh, em, err := config.ParseClock(cfg.Schedule.Evening)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	tick, err := cfg.TickInterval()
	if err != nil {
		return nil, err
	}

	ctl := scheduler.NewController(store, []scheduler.Trigger{
		{Name: "morning", MarkKey: scheduler.MorningKey, Hour: mh, Minute: mm, Request: assistant.MorningPrompt},
		{Name: "evening", MarkKey: scheduler.EveningKey, Hour: eh, Minute: em, Request: assistant.EveningPrompt},
	}, lg)
	sched := scheduler.NewScheduler(ctx, ctl, a.Hooks(), loc, lg)
	if err := sched.RegisterAll(tick, cfg.Schedule.RefreshCron, cfg.Schedule.ReviewCron); err != nil {
		return nil, err
	}
	return sched, nil
}
