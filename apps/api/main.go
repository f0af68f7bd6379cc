package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/apps/api/echo"
	"github.com/trezcool/uniguide/apps/di"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/fs"
	"github.com/trezcool/uniguide/services/broker"
	"github.com/trezcool/uniguide/services/email"
	"github.com/trezcool/uniguide/services/logger"
	"github.com/trezcool/uniguide/storage/database"
	"github.com/trezcool/uniguide/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	// set up storage
	repos, closeDB, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer closeDB()

	// set up change events
	opts := []crud.Option{crud.WithLogger(logger)}
	if conf.NATS.URL != "" {
		nc, pub, err := setUpBroker(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up broker: %v", err), err)
		}
		defer nc.Close()
		opts = append(opts, crud.WithPublisher(pub))
	}

	// set up services
	mailSvc := emailsvc.NewService(conf, logger)
	container := di.NewContainer(conf, repos, mailSvc, opts...)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, !conf.Debug, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	if conf.Server.DebugAddress != "" {
		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		Container: container,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpStorage returns the repositories of the configured database engine and a func closing it.
func setUpStorage(conf *core.Config) (di.Repositories, func(), error) {
	if conf.Database.Engine == "memory" {
		return di.MemoryRepositories(inmemdb.Open()), func() {}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return di.Repositories{}, nil, err
	}
	return di.SQLRepositories(db), func() { _ = db.Close() }, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func setUpBroker(conf *core.Config) (*nats.Conn, crud.Publisher, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	nc, js, err := broker.Connect(ctx, conf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to broker")
	}
	return nc, broker.NewPublisher(js, conf.NATS.SubjectPrefix), nil
}
