// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openplc-tools/openplc-cli/client"
	"github.com/openplc-tools/openplc-cli/internal/config"
)

func newLoginCmd(a *app) *cobra.Command {
	var addr, user, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session (host and cookie file)",
		RunE: func(cmd *cobra.Command, args []string) error {
			host := strings.TrimRight(addr, "/")
			cookie := a.cookie
			if cookie == "" {
				cookie = config.DefaultCookieFile(host)
			}

			if user == "" {
				u, err := promptLine("Username: ")
				if err != nil {
					return err
				}
				user = u
			}
			if password == "" {
				p, err := promptPassword("Password: ")
				if err != nil {
					return err
				}
				password = p
			}

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

			if err := cli.Login(cmd.Context(), user, password); err != nil {
				return err
			}
			if err := config.SaveState(config.State{Host: host, Cookie: cookie}); err != nil {
				slog.Warn("failed to save session defaults", "err", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Login OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Base URL, e.g. http://localhost:8080")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Username (prompted when omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pass), nil
}
