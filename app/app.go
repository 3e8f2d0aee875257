package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campuscore/approval-service/config"
	"github.com/campuscore/approval-service/internal/events"
	"github.com/campuscore/approval-service/internal/handler"
	"github.com/campuscore/approval-service/internal/ledger"
	"github.com/campuscore/approval-service/internal/repository"
	"github.com/campuscore/approval-service/internal/server"
	"github.com/campuscore/approval-service/internal/service"
	"github.com/campuscore/approval-service/internal/workflow"
	"github.com/campuscore/approval-service/migrations"
	"github.com/campuscore/approval-service/pkg/kafka"
	"github.com/campuscore/approval-service/pkg/logger"
	"github.com/campuscore/approval-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "approval")

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo requests %v", err)
	}
	ldg := ledger.NewPostgres(db, log)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka producer %v", err)
	}
	emitter := events.NewEmitter(log, events.NewKafkaRelay(producer, cfg.Kafka.Topic))

	engine := workflow.New(repo, ldg, emitter, log, workflow.Config{
		LoanPeriodDays: cfg.Workflow.LoanPeriodDays,
		FineRatePerDay: cfg.Workflow.FineRatePerDay,
	})
	svc := service.New(engine, ldg, repo, cfg.Workflow.FineRatePerDay, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	gg, ctx := errgroup.WithContext(context.Background())
	gg.Go(func() error {
		return srv.Run()
	})
	gg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case termSig := <-sig:
			log.Debug("Graceful shutdown", zap.Any("signal", termSig))
		case <-ctx.Done():
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := gg.Wait(); err != nil {
		log.Error("server run", zap.Error(err))
	}

	emitter.Close()
	if err := producer.Close(); err != nil {
		log.Error("producer close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
