package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/oscardm22/estuguia/api/echo"
	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/account"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/schedule"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
	emailsvc "github.com/oscardm22/estuguia/services/email"
	identitysvc "github.com/oscardm22/estuguia/services/identity"
	logsvc "github.com/oscardm22/estuguia/services/logger"
	notifsvc "github.com/oscardm22/estuguia/services/notification"
	"github.com/oscardm22/estuguia/services/workqueue"
	firestoredb "github.com/oscardm22/estuguia/storage/firestore"
	inmemdb "github.com/oscardm22/estuguia/storage/inmem"
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

	// set up repositories; DEV runs fully in memory, no emulator needed
	var (
		userRepo     user.Repository
		scheduleRepo schedule.Repository
		taskRepo     task.Repository
		identity     user.Identity
	)
	if conf.Debug {
		db := inmemdb.Open()
		userRepo = inmemdb.NewUserRepository(db)
		scheduleRepo = inmemdb.NewScheduleRepository(db)
		taskRepo = inmemdb.NewTaskRepository(db)
		identity = identitysvc.NewInmemIdentity()
	} else {
		client, err := firestoredb.Open(context.Background(), conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
		}
		defer func() {
			if err = client.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing document store: %v", err), err)
			}
		}()
		userRepo = firestoredb.NewUserRepository(client)
		scheduleRepo = firestoredb.NewScheduleRepository(client)
		taskRepo = firestoredb.NewTaskRepository(client)
		identity, err = identitysvc.NewFirebaseIdentity(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up identity service: %v", err), err)
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var notifier reminder.Notifier
	if conf.Debug {
		notifier = notifsvc.NewConsoleNotifier(conf)
	} else {
		notifier = notifsvc.NewEmailNotifier(taskRepo, userRepo, mailSvc)
	}

	runner := workqueue.NewTimerRunner()
	reminders := reminder.NewScheduler(runner, notifier, logger)
	runner.SetHandler(reminders.Deliver)

	usrSvc := user.NewService(identity, userRepo, logger)
	schedSvc := schedule.NewService(scheduleRepo)
	taskSvc := task.NewService(taskRepo, reminders)
	acctSvc := account.NewService(identity, userRepo, scheduleRepo, taskRepo, reminders, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	// =========================================================================
	// Start Reminder Sweep
	//
	// The deferred-work runner holds jobs in memory only; the sweep re-arms
	// upcoming reminders from the store on a fixed interval.

	sweeper := workqueue.NewReminderSweeper(taskRepo, reminders, conf.Reminder.SweepInterval, logger)
	crons := workqueue.NewCronScheduler(time.UTC)
	if _, err := crons.ScheduleInterval(conf.Reminder.SweepInterval, sweeper.Run); err != nil {
		logger.Fatal(fmt.Sprintf("registering reminder sweep: %v", err), err)
	}
	// a wider pass once a day pre-arms the whole coming day after restarts
	daySweeper := workqueue.NewReminderSweeper(taskRepo, reminders, 24*time.Hour, logger)
	if _, err := crons.ScheduleDaily(conf.Reminder.DailySweepTime, daySweeper.Run); err != nil {
		logger.Fatal(fmt.Sprintf("registering daily reminder sweep: %v", err), err)
	}
	crons.Start()
	defer crons.Stop()

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

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			ScheduleSvc: schedSvc,
			TaskSvc:     taskSvc,
			AccountSvc:  acctSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
