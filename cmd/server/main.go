// Command server runs the compliance audit engine: template registry, audit
// execution, findings tracking, scoring, gap analysis and the recurring
// schedule worker, behind one HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/finding"
	"certus/internal/framework"
	"certus/internal/gap"
	"certus/internal/notify"
	"certus/internal/platform/config"
	"certus/internal/platform/httpserver"
	"certus/internal/platform/logger"
	"certus/internal/platform/metrics"
	"certus/internal/platform/postgres"
	"certus/internal/platform/redis"
	"certus/internal/remedial"
	"certus/internal/reportgen"
	"certus/internal/schedule"
	"certus/internal/scoring"
	"certus/internal/template"
	httptransport "certus/internal/transport/http"
)

const activityInboxSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	catalog := framework.NewCatalog(framework.DefaultFrameworks())

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		templateStore template.Store
		reportStore   execution.Store
		findingIndex  finding.Store
		remedialStore remedial.Store
		scheduleStore schedule.Store
		activityStore activity.Store
	)
	if db != nil {
		templateStore = template.NewPostgresStore(db)
		reportStore = execution.NewPostgresStore(db)
		findingIndex = finding.NewPostgresStore(db)
		remedialStore = remedial.NewPostgresStore(db)
		scheduleStore = schedule.NewPostgresStore(db)
		activityStore = activity.NewPostgresStore(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		templateStore = template.NewInMemoryStore()
		reportStore = execution.NewInMemoryStore()
		findingIndex = finding.NewInMemoryStore()
		remedialStore = remedial.NewInMemoryStore()
		scheduleStore = schedule.NewInMemoryStore()
		activityStore = activity.NewInMemoryStore()
	}

	inbox := make(chan activity.Event, activityInboxSize)
	publisher := activity.NewChannelPublisher(inbox, log)
	activityWorker := activity.NewWorker(activityStore, inbox, log)

	tracker := scoring.NewTracker(m)
	scorer := scoring.NewService(tracker)
	locks := execution.NewReportLocks()
	notifier := notify.NewLog(log)

	templateSvc := template.NewService(templateStore, catalog, publisher)
	reportSvc := execution.NewService(reportStore, templateSvc, scorer, locks, notifier, publisher, m, log)
	remedialSvc := remedial.NewService(remedialStore, publisher, m)

	var gapCache gap.Cache
	if redisClient != nil {
		gapCache = gap.NewRedisCache(redisClient, cfg.GapCacheTTL, log)
	}

	// The analyzer reads findings through the finding service, and finding
	// writes invalidate the analyzer's cache. The first instance is the
	// analyzer's read path only; the second carries the invalidator.
	findingReads := finding.NewService(reportStore, findingIndex, locks, scorer,
		remedialSvc, notifier, publisher, nil, m)
	analyzer := gap.NewAnalyzer(catalog, findingReads, reportStore, gapCache, m, log)
	findingSvc := finding.NewService(reportStore, findingIndex, locks, scorer,
		remedialSvc, notifier, publisher, analyzer, m)

	generator := reportgen.NewGenerator(catalog, remedialSvc)
	scheduleSvc := schedule.NewService(scheduleStore, templateSvc, reportSvc, notifier, publisher, m, log)
	scheduleWorker := schedule.NewWorker(scheduleSvc, cfg.ScheduleTickInterval, log)

	health := map[string]httptransport.HealthCheck{}
	if db != nil {
		health["postgres"] = db.PingContext
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Templates:  httptransport.NewTemplateHandler(templateSvc, log),
		Reports:    httptransport.NewReportHandler(reportSvc, generator, log),
		Findings:   httptransport.NewFindingHandler(findingSvc, remedialSvc, log),
		Frameworks: httptransport.NewFrameworkHandler(catalog, analyzer, tracker),
		Schedules:  httptransport.NewScheduleHandler(scheduleSvc, log),
		Activity:   httptransport.NewActivityHandler(activityStore),
		Logger:     log,
		Metrics:    m,
		Health:     health,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return activityWorker.Run(gctx)
	})
	g.Go(func() error {
		return scheduleWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting audit engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
