package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"MarketSeries/internal/config"
	"MarketSeries/internal/ingest"
	"MarketSeries/internal/metrics"
	"MarketSeries/internal/model"
	"MarketSeries/internal/notifier"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/source"
	"MarketSeries/internal/store"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("ingest run already in progress")

// OpenFunc builds a fresh row reader for one run.
type OpenFunc func(ctx context.Context) (model.RowReader, error)

// SourceOpener returns an OpenFunc backed by the configured data source.
func SourceOpener(cfg *config.Config) OpenFunc {
	return func(ctx context.Context) (model.RowReader, error) {
		return source.Open(ctx, cfg.DataSource, cfg.Proxy)
	}
}

// Scheduler runs ingestion on a cron schedule and serves the latest result.
type Scheduler struct {
	Cron     *cron.Cron
	Open     OpenFunc
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Ctx      context.Context

	tickers []string
	sort    bool

	runMu sync.Mutex

	mu         sync.RWMutex
	latest     *store.Store
	partial    *store.Store
	lastReport *ingest.Report
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, open OpenFunc, tn *notifier.TelegramNotifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		Open:     open,
		Notifier: tn,
		Recorder: rec,
		Metrics:  m,
		Ctx:      ctx,
		tickers:  cfg.Ingest.Tickers,
		sort:     cfg.Ingest.SortSeries,
	}
}

// Register adds the ingestion job.
func (s *Scheduler) Register(ingestCron string) error {
	if _, err := s.Cron.AddFunc(ingestCron, s.ingestTask); err != nil {
		return fmt.Errorf("register ingest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) ingestTask() {
	if _, err := s.RunNow(s.Ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		log.Printf("[ERROR] scheduled ingest: %v", err)
	}
}

// RunNow performs one ingestion into a fresh store. A completed run replaces
// the latest store and drops any partial one; an aborted or cancelled run
// keeps the latest store and publishes what it gathered as the partial store.
func (s *Scheduler) RunNow(ctx context.Context) (*ingest.Report, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	reader, err := s.Open(ctx)
	if err != nil {
		s.trySend(fmt.Sprintf("❌ ingest source unavailable: %v", err))
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("[WARN] close %s: %v", reader.Name(), err)
		}
	}()

	st := store.New()
	eng := ingest.New(st,
		ingest.WithTickers(s.tickers),
		ingest.WithSortOnFinish(s.sort),
		ingest.WithMetrics(s.Metrics),
	)
	rep, runErr := eng.Run(ctx, reader)

	s.mu.Lock()
	s.lastReport = rep
	if runErr == nil {
		s.latest = st
		s.partial = nil
	} else {
		s.partial = st
	}
	s.mu.Unlock()

	if err := s.Recorder.RecordRun(rep); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	s.trySend(notifier.FormatRunReport(rep))
	return rep, runErr
}

// Latest returns the store from the most recent completed run, or nil.
// A published store is never written again.
func (s *Scheduler) Latest() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Partial returns the store left by the most recent run if it did not
// complete, or nil once a later run completes.
func (s *Scheduler) Partial() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partial
}

// LastReport returns the report of the most recent run, or nil.
func (s *Scheduler) LastReport() *ingest.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}

	switch fields[0] {
	case "/status":
		rep := s.LastReport()
		if rep == nil {
			return "No ingestion has run yet."
		}
		return notifier.FormatRunReport(rep)
	case "/tickers":
		return notifier.FormatTickers(s.Latest())
	case "/series":
		if len(fields) < 2 {
			return "Usage: /series TICKER"
		}
		return seriesReply(s.Latest(), fields[1])
	case "/partial":
		st := s.Partial()
		if st == nil {
			return "No partial run data."
		}
		if len(fields) < 2 {
			return "⚠️ Partial run\n\n" + notifier.FormatTickers(st)
		}
		return "⚠️ Partial run\n\n" + seriesReply(st, fields[1])
	case "/history":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRecentRuns(runs)
	case "/run":
		if !s.runMu.TryLock() {
			return "⏳ An ingestion run is already in progress."
		}
		s.runMu.Unlock()
		go s.ingestTask()
		return "▶️ Ingestion started."
	default:
		return notifier.FormatHelp()
	}
}

func seriesReply(st *store.Store, ticker string) string {
	if st == nil {
		return "No series loaded yet."
	}
	series, err := st.Snapshot(ticker)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return notifier.FormatSeries(series)
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
