package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	echoapi "github.com/Sissypen/CAS-CCS-Attendance-System/apps/api/echo"
)

const shutdownTimeout = 5 * time.Second

var newServerFunc = echoapi.NewServer // mockable

func (cli *commandLine) serve(args []string) error {
	serveCmd := cli.newFlagSet("serve")
	addr := serveCmd.String("addr", cli.conf.Server.Address, "The address to listen on.")
	if err := parse(serveCmd, args); err != nil {
		return err
	}

	server := newServerFunc(&echoapi.Options{
		Address:      *addr,
		Debug:        cli.conf.Debug,
		TestMode:     cli.conf.TestMode,
		Report:       cli.conf.Report,
		FallbackSeed: cli.conf.Fallback.SeedFile,
		Logger:       cli.logger,
		Engine:       cli.engine,
		SchoolSvc:    cli.schoolSvc,
		Fallback:     cli.fallback,
	})

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-errs:
		return err

	case sig := <-shutdown:
		cli.logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		return <-errs
	}
}
