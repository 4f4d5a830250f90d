// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openplc-tools/openplc-cli/client"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the instance is online",
	}
	cmd.AddCommand(newStatusCheckCmd(a), newStatusOnlineWaitCmd(a))
	return cmd
}

func newStatusCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report the current instance state (online/offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				state := c.Status(ctx)
				if a.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]string{"status": state})
				}
				fmt.Fprintln(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}
}

func newStatusOnlineWaitCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "onlinewait",
		Short: "Block until the instance reports online",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Waiting for OpenPLC server at %s to come online...\n", c.BaseURL())
				if err := c.WaitOnline(ctx, interval); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "online")
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Pause between probes")
	return cmd
}
