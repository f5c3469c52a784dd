package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoweb "github.com/trezcool/masomo-dashboard/apps/web/echo"
	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/summary"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	logger.Enable(!conf.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := restapi.NewClient(restapi.Options{
		BaseURL:    conf.API.BaseURL,
		Timeout:    conf.API.Timeout,
		Registerer: reg,
	})
	if err != nil {
		return errors.Wrap(err, "setting up API client")
	}
	courseRepo := restapi.NewCourseRepository(client)
	annRepo := restapi.NewAnnouncementRepository(client)

	// set up services
	courseSvc := course.NewService(courseRepo, courseRepo, conf.Course.Levels)
	annSvc := announcement.NewService(annRepo)
	summarySvc := summary.NewService(restapi.NewStatsRepository(client), courseRepo, annRepo, courseRepo, conf.Course.Levels)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	course.InitValidators(validate, translator, conf.Course.Levels)
	announcement.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Web.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server, err := echoweb.NewServer(&echoweb.Options{
		Address:       conf.Web.Address,
		AppName:       conf.AppName,
		Build:         conf.Build,
		Debug:         conf.Debug,
		TestMode:      conf.TestMode,
		SecureCookies: conf.Web.SecureCookies,
		Courses:       courseSvc,
		Announcements: annSvc,
		References:    courseRepo,
		Summary:       summarySvc,
		Auth:          client,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Validate:      validate,
		Translator:    translator,
		Logger:        logger,
	})
	if err != nil {
		return errors.Wrap(err, "setting up web server")
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Dashboard listening on %s", conf.Web.Address))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Web.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
