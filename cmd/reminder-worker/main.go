package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/jafetfresenbet/TrueTime/internal/config/reminder"
	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
	"github.com/jafetfresenbet/TrueTime/internal/obs"
	kafkaRepo "github.com/jafetfresenbet/TrueTime/internal/repository/kafka"
	pg "github.com/jafetfresenbet/TrueTime/internal/repository/postgres"
	"github.com/jafetfresenbet/TrueTime/internal/services/notifier"
)

func main() {
	cfgPath := flag.String("config", "config/reminder-worker.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single notification cycle and exit")
	flag.Parse()

	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting reminder worker",
		zap.Duration("tick", cfg.Worker.Tick),
		zap.String("metrics_addr", cfg.Worker.MetricsAddr),
		zap.Bool("once", *once),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// kafka (optional audit stream)
	var events reminder.Events
	if cfg.Kafka.Enable {
		prod := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
		events = kafkaRepo.NewReminderEventsKafka(prod)
	}

	// metrics server
	ms := obs.BootstrapMetricsServer(cfg.Worker.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	// wiring
	mailer := notifier.NewMailer(cfg.SMTP).WithLogger(l)
	eng := notifier.NewEngine(
		l,
		pg.NewAssignmentRepo(db),
		pg.NewRosterRepo(db),
		pg.NewReminderRepo(db),
		mailer,
		events,
		reminder.SystemClock{},
		notifier.EngineConfig{
			SendConcurrency: cfg.Worker.SendConcurrency,
			SendAttempts:    cfg.Worker.SendAttempts,
		},
	)

	if *once {
		// operator-triggered out-of-band cycle
		stats, err := eng.RunCycle(ctx)
		if err != nil {
			l.Warn("cycle error", zap.Error(err))
		}
		l.Info("cycle complete",
			zap.Int("sent", stats.Sent),
			zap.Int("failed", stats.Failed),
			zap.Int64("reaped", stats.Reaped),
		)
	} else {
		runner := notifier.NewRunner(l, eng, notifier.RunnerConfig{
			Tick:         cfg.Worker.Tick,
			CycleTimeout: cfg.Worker.CycleTimeout,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- runner.Run(ctx) }()

		l.Info("reminder worker started")

		select {
		case <-ctx.Done():
		case err = <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				l.Error("runner error", zap.Error(err))
			}
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
