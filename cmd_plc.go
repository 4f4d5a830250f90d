// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openplc-tools/openplc-cli/client"
)

func newPLCCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plc",
		Short: "Control the PLC runtime",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the PLC runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.StartPLC(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "PLC started.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the PLC runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.StopPLC(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "PLC stopped.")
				return nil
			})
		},
	})

	return cmd
}

func newLogsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Fetch the runtime logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				text, err := c.RuntimeLogs(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}
