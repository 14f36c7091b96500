package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/octoscan/pixtract/pkg/config"
	"github.com/octoscan/pixtract/pkg/logger"
	"github.com/octoscan/pixtract/pkg/pipeline"
)

const (
	exitUsage       = 2
	exitEnvironment = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pixtract <image-path>")
		return exitUsage
	}
	imagePath := os.Args[1]

	log, err := logger.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pixtract: initializing logger:", err)
		return 1
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pixtract:", err)
		return exitEnvironment
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pixtract:", err)
		return exitEnvironment
	}

	// SIGINT/SIGTERM cancel the in-flight call; the deferred cleanup in
	// the pipeline still removes any temporary image.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := p.Run(ctx, imagePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pixtract:", err)
		return pipeline.ExitCode(err)
	}

	fmt.Println(outcome.Text)
	fmt.Fprintln(os.Stderr, "result saved to", outcome.ResultPath)
	return 0
}
