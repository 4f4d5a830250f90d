// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openplc-tools/openplc-cli/client"
)

func newProgramCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Manage control programs",
	}
	cmd.AddCommand(newProgramLsCmd(a), newProgramCreateCmd(a), newProgramRmCmd(a))
	return cmd
}

func newProgramLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				rows, err := c.ListPrograms(ctx)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				printTable(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func newProgramCreateCmd(a *app) *cobra.Command {
	var file, name, descr string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Upload a program and register it in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				result, err := c.UploadProgram(ctx, file, name, descr)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the .st program file")
	cmd.Flags().StringVar(&name, "name", "", "Program name")
	cmd.Flags().StringVar(&descr, "descr", "", "Program description")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProgramRmCmd(a *app) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove a program from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.RemoveProgram(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Program removed.")
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Program id")
	cmd.MarkFlagRequired("id")
	return cmd
}
