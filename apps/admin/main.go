package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
	"github.com/trezcool/masomo-dashboard/storage/session"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stderr, conf)
	logger.Enable(!conf.Debug)

	tokens := session.NewFileStore(conf.Session.TokenFile)
	client, err := restapi.NewClient(restapi.Options{
		BaseURL: conf.API.BaseURL,
		Timeout: conf.API.Timeout,
		Tokens:  tokens,
	})
	errAndDie(err)

	courseRepo := restapi.NewCourseRepository(client)
	annRepo := restapi.NewAnnouncementRepository(client)

	validate, translator := core.NewValidator()
	course.InitValidators(validate, translator, conf.Course.Levels)
	announcement.InitValidators(validate, translator)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// start CLI
	cli := commandLine{
		in:            os.Stdin,
		out:           os.Stdout,
		errOut:        os.Stderr,
		courses:       course.NewService(courseRepo, courseRepo, conf.Course.Levels),
		announcements: announcement.NewService(annRepo),
		stats:         restapi.NewStatsRepository(client),
		auth:          client,
		tokens:        tokens,
		validate:      validate,
		translator:    translator,
		logger:        logger,
	}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		switch {
		case err == errHelp:
		case core.IsLoginRequired(err):
			fmt.Fprintln(os.Stderr, "error: not logged in or session expired; run `masomo-admin login --username USERNAME`")
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
