package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"MarketSeries/internal/config"
	"MarketSeries/internal/logging"
	"MarketSeries/internal/metrics"
	"MarketSeries/internal/notifier"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	logCloser, err := logging.Setup(cfg)
	if err != nil {
		log.Printf("[WARN] log file disabled: %v", err)
	}
	defer logCloser.Close()
	log.Println("[INFO] MarketSeries starting...")
	log.Printf("[INFO] data source: %s", cfg.DataSource.Kind)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go m.Serve(ctx, cfg.Metrics.Addr)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	sched := scheduler.NewScheduler(ctx, cfg, scheduler.SourceOpener(cfg), tn, rec, m)

	if os.Getenv("RUN_ONCE") == "true" {
		code := runOnce(ctx, sched)
		rec.Close()
		logCloser.Close()
		os.Exit(code)
	}

	if err := sched.Register(cfg.Schedule.IngestCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if cfg.Schedule.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] run on start enabled, ingesting now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Printf("[ERROR] startup ingest: %v", err)
			}
		}()
	}

	log.Printf("[INFO] MarketSeries is running (cron %q). Press Ctrl+C to stop.", cfg.Schedule.IngestCron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

// runOnce performs a single ingestion and returns the process exit code.
func runOnce(ctx context.Context, sched *scheduler.Scheduler) int {
	rep, err := sched.RunNow(ctx)
	if rep != nil {
		fmt.Println(rep)
	}
	if err != nil {
		log.Printf("[ERROR] ingest failed: %v", err)
		return 1
	}
	return 0
}
