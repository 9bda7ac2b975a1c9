package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/academia-hub/academia/apps/api/echo"
	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
	"github.com/academia-hub/academia/core/user"
	emailsvc "github.com/academia-hub/academia/services/email"
	logsvc "github.com/academia-hub/academia/services/logger"
	"github.com/academia-hub/academia/storage/database"
	sqlxrepos "github.com/academia-hub/academia/storage/database/sqlx"
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
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// set up repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	deptRepo := sqlxrepos.NewDepartmentRepository(db)
	subRepo := sqlxrepos.NewSubjectRepository(db)
	tchrRepo := sqlxrepos.NewTeacherRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	enrRepo := sqlxrepos.NewEnrollmentRepository(db)
	attRepo := sqlxrepos.NewAttendanceRepository(db)
	mrkRepo := sqlxrepos.NewMarksRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(conf, usrRepo, mailSvc, logger)
	enrSync := enrollment.NewSynchronizer(conf, db, enrRepo, stdRepo, subRepo, tchrRepo, logger)
	deptSvc := department.NewService(deptRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address: conf.Server.Address(),
		Logger:  logger,
		UserSvc: usrSvc,
		DeptSvc: deptSvc,
		SubSvc:  subject.NewService(subRepo, enrSync),
		TchrSvc: teacher.NewService(tchrRepo, usrSvc),
		StdSvc:  student.NewService(stdRepo, usrSvc, enrSync),
		EnrSync: enrSync,
		AttSvc:  attendance.NewService(db, attRepo, enrSync),
		MrkSvc:  marks.NewService(db, mrkRepo, enrSync),
		AnlSvc:  analytics.NewService(stdRepo, tchrRepo, subRepo, attRepo, mrkRepo, enrRepo, deptSvc),
	})

	go server.Start()

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

func setUpDB(conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB.DB); err != nil {
		return nil, err
	}
	return db, nil
}
