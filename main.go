//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rabbitstack/rabbitc/logger"
	"github.com/rabbitstack/rabbitc/netlinkclient"
	"github.com/rabbitstack/rabbitc/options"
	"github.com/rabbitstack/rabbitc/supervisor"
)

func main() {
	cfg, err := options.Parse(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing error:", err)
		os.Exit(1)
	} else if cfg == nil {
		// Help or version was printed.
		os.Exit(0)
	}

	log := logger.CreateLogger(&logger.LoggerOpts{
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
	})
	log.Info("starting container", slog.Any("spec", cfg.Spec))

	client := netlinkclient.New()

	status, err := supervisor.Run(client, cfg.Spec)
	if err != nil {
		log.Error("supervisor failed", slog.Any("err", err))
		os.Exit(1)
	}

	os.Exit(status)
}
