package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
	emailsvc "github.com/campusmove/movplan/services/email"
	logsvc "github.com/campusmove/movplan/services/logger"
	"github.com/campusmove/movplan/storage"
	"github.com/campusmove/movplan/storage/docstore/pgdoc"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	var closers []func() error
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Error("closing", err)
			}
		}
	}()

	// start CLI
	cli := commandLine{
		conf: conf,
		out:  os.Stdout,
		openDB: func() (*sql.DB, error) {
			if err := pgdoc.CreateIfNotExist(conf); err != nil {
				return nil, err
			}
			db, err := pgdoc.Open(conf)
			if err != nil {
				return nil, err
			}
			closers = append(closers, db.Close)
			return db.DB, nil
		},
		openPlanner: func(ctx context.Context) (*planner.Planner, error) {
			repos, err := storage.Open(ctx, conf)
			if err != nil {
				return nil, err
			}
			closers = append(closers, repos.Close)

			validate, translator := core.NewValidator()
			movement.InitValidators(validate, translator)

			var mailSvc core.EmailService
			if conf.SendgridApiKey != "" {
				mailSvc = emailsvc.NewSendgridService(conf, logger)
			} else {
				mailSvc = emailsvc.NewConsoleService(conf, logger)
			}
			if w, ok := mailSvc.(interface{ Wait() }); ok {
				closers = append(closers, func() error { w.Wait(); return nil })
			}

			stores := planner.NewStores(repos.Services(validate), logger)
			p := planner.New(stores, validate, logger, mailSvc, planner.Options{BlockOverbooked: conf.Planner.BlockOverbooked})
			return p, p.Refresh(ctx)
		},
	}
	err := cli.run(os.Args)

	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		for _, closeFn := range closers {
			_ = closeFn()
		}
		os.Exit(1)
	}
}
