package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoapi "sekolahku/apps/api/echo"
	"sekolahku/core"
	"sekolahku/core/checklist"
	"sekolahku/core/grade"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
	emailsvc "sekolahku/services/email"
	logsvc "sekolahku/services/logger"
	"sekolahku/storage/database"
	inmemdb "sekolahku/storage/database/inmem"
	sqlxrepos "sekolahku/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	if err := run(logger); err != nil {
		logger.Fatal("starting api", err)
	}
}

func run(logger core.Logger) error {
	var (
		usrRepo user.Repository
		stdRepo student.Repository
		subRepo subject.Repository
		grdRepo grade.Repository
		chkRepo checklist.Repository
	)

	if core.Conf.DemoMode {
		// demo mode runs entirely in memory on seeded fixtures
		db, err := inmemdb.Open()
		if err != nil {
			return errors.Wrap(err, "opening database")
		}
		if err = inmemdb.Seed(db); err != nil {
			return errors.Wrap(err, "seeding database")
		}
		usrRepo = inmemdb.NewUserRepository(db)
		stdRepo = inmemdb.NewStudentRepository(db)
		subRepo = inmemdb.NewSubjectRepository(db)
		grdRepo = inmemdb.NewGradeRepository(db)
		chkRepo = inmemdb.NewChecklistRepository(db)
	} else {
		db, err := database.Open(core.Conf)
		if err != nil {
			return errors.Wrap(err, "opening database")
		}
		defer func() { _ = db.Close() }()

		usrRepo = sqlxrepos.NewUserRepository(db)
		stdRepo = sqlxrepos.NewStudentRepository(db)
		subRepo = sqlxrepos.NewSubjectRepository(db)
		grdRepo = sqlxrepos.NewGradeRepository(db)
		chkRepo = sqlxrepos.NewChecklistRepository(db)
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:      core.Conf.Server.Address(),
		UserSvc:      user.NewService(usrRepo, mailSvc, logger),
		StudentSvc:   student.NewService(stdRepo),
		SubjectSvc:   subject.NewService(subRepo),
		GradeSvc:     grade.NewService(grdRepo, stdRepo, subRepo, grade.DefaultScorePolicy),
		ChecklistSvc: checklist.NewService(chkRepo),
		Logger:       logger,
		Shutdown:     func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("api listening on " + core.Conf.Server.Address())
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		logger.Info("shutdown started", sig)

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		logger.Info("shutdown complete")
	}
	return nil
}
