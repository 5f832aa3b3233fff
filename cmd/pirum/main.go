package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ralt/pirum/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// An interrupted build stops before publishing and leaves the channel as it was
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
