package main

import (
	"os"
	"os/signal"
	"syscall"

	"code.cloudfoundry.org/clock"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/cloudfoundry/policy-bundle-installer/app"
)

const mainLogTag = "main"

func main() {
	opts, err := app.ParseOptions(os.Args)
	if err != nil {
		boshlog.NewLogger(boshlog.LevelError).Error(mainLogTag, "Parsing options %s", err.Error())
		os.Exit(2)
	}

	level, err := boshlog.Levelify(opts.LogLevel)
	if err != nil {
		boshlog.NewLogger(boshlog.LevelError).Error(mainLogTag, "Parsing log level %s", err.Error())
		os.Exit(2)
	}

	logger := boshlog.NewWriterLogger(level, os.Stderr)
	defer logger.HandlePanic("Main")

	installer := app.New(logger, boshsys.NewOsFileSystem(logger), clock.NewClock(), os.Stdout)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Warn(mainLogTag, "Received %s, stopping at the next checkpoint", sig)
		installer.Cancel()
	}()

	err = installer.Run(opts)
	if err != nil {
		logger.Error(mainLogTag, "App run %s", err.Error())
		os.Exit(1)
	}
}
