package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ritzau/javabuild/pkg/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		output.NewConsole(os.Stderr).Error("%v", err)
		os.Exit(1)
	}
}
