package main

import (
	"os"

	"github.com/trezcool/uniguide/apps/di"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/services/email"
	"github.com/trezcool/uniguide/services/logger"
	"github.com/trezcool/uniguide/storage/database"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewKitLogger(os.Stderr, "info").With("app", "admin")

	if conf.Database.Engine == "memory" {
		logger.Fatal("the admin commands need a database; set DBENGINE=postgres")
	}

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	c := di.NewContainer(conf, di.SQLRepositories(db), emailsvc.NewService(conf, logger))

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db.DB,
		users:      c.Users,
		translator: c.Translator,
		logger:     logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
