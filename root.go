// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/openplc-tools/openplc-cli/client"
	"github.com/openplc-tools/openplc-cli/internal/config"
)

// app carries the resolved global options shared by all commands.
type app struct {
	configFile string
	host       string
	cookie     string
	timeout    time.Duration
	jsonOut    bool
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "openplc-cli",
		Short: "Manage an OpenPLC instance through its web interface",
		Long: `openplc-cli drives a remote OpenPLC instance through the same HTML
forms a browser would use: it logs in, keeps the session cookies on disk,
manages Modbus devices and control programs, and starts or stops the runtime.

Host and cookie file default to the values saved by the last login.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if !cmd.Flags().Changed("timeout") {
				a.timeout = cfg.Timeout
			}
			if a.logLevel == "" {
				a.logLevel = cfg.Log.Level
			}
			setupLogger(config.LogConfig{Level: a.logLevel, File: cfg.Log.File})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to config file")
	pf.StringVar(&a.host, "host", "", "Base URL of the OpenPLC web interface (default: last login)")
	pf.StringVar(&a.cookie, "cookie", "", "Cookie file path (default: last login, or per-host cache file)")
	pf.DurationVar(&a.timeout, "timeout", 20*time.Second, "HTTP timeout")
	pf.BoolVar(&a.jsonOut, "json", false, "Output JSON where applicable")
	pf.StringVar(&a.logLevel, "log-level", "", "Log verbosity level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newDeviceCmd(a),
		newProgramCmd(a),
		newPLCCmd(a),
		newStatusCmd(a),
		newLogsCmd(a),
	)
	return root
}

// withClient builds a client from the resolved host/cookie pair, runs fn, and
// flushes the session cookies back to disk.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	host, cookie := config.Resolve(a.host, a.cookie, a.cfg.Host)
	cli, err := client.New(client.Config{
		BaseURL:    host,
		CookieFile: cookie,
		Timeout:    a.timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := cli.Close(); err != nil {
			slog.Warn("failed to save session cookies", "err", err)
		}
	}()
	return fn(cmd.Context(), cli)
}
