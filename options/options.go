//go:build linux

// Package options parses the command line into a fully-resolved
// supervisor.ContainerSpec plus the ambient logger configuration.
package options

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/urfave/cli/v3"

	"github.com/rabbitstack/rabbitc/logger"
	"github.com/rabbitstack/rabbitc/supervisor"
	"github.com/rabbitstack/rabbitc/version"
)

// Config is the result of a successful Parse: a container spec ready for
// supervisor.Run, plus the logger options derived from --log-level and
// --log-format.
type Config struct {
	Spec      supervisor.ContainerSpec
	LogLevel  slog.Level
	LogFormat logger.LogFormat
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("bad --log-level %q (want debug|info|warn|error)", s)
	}
}

func parseLogFormat(s string) (logger.LogFormat, error) {
	switch s {
	case "text":
		return logger.LogText, nil
	case "json":
		return logger.LogJSON, nil
	default:
		return 0, fmt.Errorf("bad --log-format %q (want text|json)", s)
	}
}

func buildConfigFromCLI(c *cli.Command) (*Config, error) {
	rootfs := c.String("rootfs")
	if rootfs == "" {
		return nil, fmt.Errorf("--rootfs is required")
	}

	cmdPath := c.String("cmd")
	if cmdPath == "" {
		return nil, fmt.Errorf("--cmd must not be empty")
	}

	for _, name := range []string{"network-ip", "container-ip"} {
		if _, _, err := net.ParseCIDR(c.String(name)); err != nil {
			return nil, fmt.Errorf("bad --%s %q: %w", name, c.String(name), err)
		}
	}

	logLevel, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	logFormat, err := parseLogFormat(c.String("log-format"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Spec: supervisor.ContainerSpec{
			Rootfs:        rootfs,
			Hostname:      c.String("hostname"),
			Cmd:           []string{cmdPath},
			BridgeName:    c.String("network-name"),
			BridgeCIDR:    c.String("network-ip"),
			ContainerCIDR: c.String("container-ip"),
		},
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

// Parse parses argv into a Config, running cli.Command under the hood.
// A nil Config with a nil error means help or version was requested and
// already printed; the caller should exit 0.
func Parse(ctx context.Context, args []string) (*Config, error) {
	var result *Config

	cmd := &cli.Command{
		Name:      "rabbitc",
		Usage:     "A minimal Linux container runtime.",
		Version:   version.Version(),
		HideHelp:  true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rootfs",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "Path to the container root filesystem",
			},
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"h"},
				Value:   "rabbitc",
				Usage:   "UTS hostname inside the container",
			},
			&cli.StringFlag{
				Name:    "cmd",
				Aliases: []string{"c"},
				Value:   "/bin/sh",
				Usage:   "Absolute path to the program to exec",
			},
			&cli.StringFlag{
				Name:    "network-name",
				Aliases: []string{"n"},
				Value:   "rabbitc0",
				Usage:   "Host bridge device name",
			},
			&cli.StringFlag{
				Name:    "network-ip",
				Aliases: []string{"i"},
				Value:   "172.19.0.1/16",
				Usage:   "Bridge gateway address, CIDR",
			},
			&cli.StringFlag{
				Name:    "container-ip",
				Aliases: []string{"t"},
				Value:   "172.19.0.2/16",
				Usage:   "Container interface address, CIDR",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "error",
				Usage: "Log verbosity (debug|info|warn|error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Log format (text|json)",
			},
			&cli.BoolFlag{
				Name:  "help",
				Usage: "Show help",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("help") {
				return cli.ShowAppHelp(c)
			}
			cfg, err := buildConfigFromCLI(c)
			if err != nil {
				return err
			}
			result = cfg
			return nil
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		return nil, err
	}

	return result, nil
}
