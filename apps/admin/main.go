package main

import (
	"fmt"
	"log"
	"os"

	"github.com/realangry/schoolweb"
	"github.com/realangry/schoolweb/core"
	logsvc "github.com/realangry/schoolweb/services/logger"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	var appLogger core.Logger
	if conf.RollbarToken != "" {
		appLogger = logsvc.NewRollbarLogger(logger, conf)
	} else {
		appLogger = logsvc.NewConsoleLogger(logger)
	}
	appLogger.Enable(conf.Debug)

	app, err := schoolweb.New(conf, appLogger, func(msg string) {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	})
	errAndDie(err)

	// pick up a persisted session if one exists
	errAndDie(app.Session.Restore())

	cli := commandLine{app: app}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
