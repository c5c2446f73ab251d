package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/market"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/ops"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/sink"
	"SignalSentinel/internal/store"
)

func main() {
	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.Info().Msg("SignalSentinel starting")

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	client := market.NewClient(market.Config{
		BaseURL:    cfg.Market.BaseURL,
		Timeout:    cfg.Market.Timeout,
		MaxRetries: cfg.Market.MaxRetries,
		RetryDelay: cfg.Market.RetryDelay,
	}, log)

	var push notifier.Notifier
	if cfg.Notify.WebhookURL != "" {
		push = notifier.NewWebhookNotifier(cfg.Notify.WebhookURL, log)
		log.Info().Str("webhook", cfg.Notify.WebhookURL).Msg("push notifications enabled")
	} else {
		push = notifier.NewLogNotifier(log)
	}

	rec := metrics.New()
	alerts := sink.New(st, push, rec, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, st, client, alerts, scheduler.Config{
		Interval:       cfg.Poll.Interval,
		Cooldown:       cfg.Poll.Cooldown,
		CandleInterval: cfg.Market.Interval,
		CandleLimit:    cfg.Market.Limit,
		MinSeriesLen:   cfg.Poll.MinSeries,
		DefaultSymbols: cfg.Defaults.Symbols,
		RSIPeriod:      cfg.Indicators.RSIPeriod,
		MACDShort:      cfg.Indicators.MACDShort,
		MACDLong:       cfg.Indicators.MACDLong,
		MACDSignal:     cfg.Indicators.MACDSignal,
		MomentumPeriod: cfg.Indicators.MomentumPeriod,
	}, rec, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}
	defer sched.Stop()

	opsServer := ops.NewServer(cfg.Ops.Addr, sched, log)
	opsServer.Start()

	if cfg.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing a cycle now")
		go sched.RunCycle()
	}

	log.Info().Msg("SignalSentinel is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := opsServer.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ops server shutdown")
	}
	log.Info().Msg("SignalSentinel stopped")
}
