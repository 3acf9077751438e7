package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"holdem-server/internal/config"
	"holdem-server/internal/mux"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/db"
	"holdem-server/pkg/events"
	"holdem-server/pkg/handmanager"
	"holdem-server/pkg/poker/simulator"
	"holdem-server/pkg/store"
	"holdem-server/pkg/store/memstore"
	"holdem-server/pkg/store/pgstore"
)

const readTimeout = time.Second * 5

// simulations can run long
const writeTimeout = time.Second * 30

const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides the configuration")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()
	if *addr != "" {
		cfg.Addr = *addr
	}

	var closers []func() error
	defer func() {
		for _, closer := range closers {
			if err := closer(); err != nil {
				logrus.WithError(err).Warn("could not close resource")
			}
		}
	}()

	opts := []handmanager.Option{handmanager.WithLogger(logrus.StandardLogger())}

	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.Redis.URL, time.Duration(cfg.Redis.TTL)*time.Second)
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to redis")
		}

		closers = append(closers, rc.Close)
		opts = append(opts, handmanager.WithCache(rc))
		logrus.Info("caching betting rounds in redis")
	}

	publishers := events.Multi{events.NewLogPublisher(logrus.StandardLogger())}
	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to amqp")
		}

		closers = append(closers, pub.Close)
		publishers = append(publishers, pub)
		logrus.WithField("exchange", cfg.AMQP.Exchange).Info("publishing hand actions")
	}
	opts = append(opts, handmanager.WithPublisher(publishers))

	manager := handmanager.New(openStore(cfg), opts...)
	sim := simulator.New(simulator.Options{
		DefaultTrials: cfg.Simulation.DefaultTrials,
		MaxTrials:     cfg.Simulation.MaxTrials,
		Workers:       cfg.Simulation.Workers,
	})

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "X-Request-ID"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, manager, sim))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("could not shut down cleanly")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":    srv.Addr,
		"version": Version,
		"store":   cfg.Store,
	}).Info("listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("server failed")
	}
}

func openStore(cfg config.Config) store.Store {
	switch cfg.Store {
	case config.StoreMemory:
		logrus.Warn("using the in-memory store, hands are lost on restart")
		return memstore.New()
	case config.StorePostgres:
		if err := db.Migrate(); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}

		return pgstore.New(db.Instance())
	}

	logrus.WithField("store", cfg.Store).Fatal("unknown store")
	return nil
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(config.Instance().Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
