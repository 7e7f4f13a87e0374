// File: cmd/yiiepctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yiiep-sdk/internal/config"
	payAdapters "yiiep-sdk/internal/infra/adapters/payment"
	"yiiep-sdk/internal/infra/cli"
	"yiiep-sdk/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "use the in-memory gateway when no credentials are configured")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: yiiepctl [-config path] [-dev] <command> [args]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfgPath, *devMode, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, dev bool, args []string) error {
	cfg, err := config.LoadConfig(cfgPath, dev)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Log, cfg.Runtime.Dev, os.Stderr)

	gw, err := payAdapters.NewGateway(cfg, logger)
	if err != nil {
		return err
	}
	err = cli.NewRunner(gw, os.Stdout).Run(ctx, args)
	if errors.Is(err, cli.ErrUsage) {
		flag.Usage()
	}
	return err
}
