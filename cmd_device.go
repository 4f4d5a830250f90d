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

func newDeviceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage Modbus slave devices",
	}
	cmd.AddCommand(newDeviceLsCmd(a), newDeviceCreateCmd(a))
	return cmd
}

func newDeviceLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List Modbus slave devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				rows, err := c.ListModbusDevices(ctx)
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

func newDeviceCreateCmd(a *app) *cobra.Command {
	dev := client.DefaultDeviceConfig()

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Modbus slave device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.AddModbusDevice(ctx, dev); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Modbus device created.")
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&dev.Name, "name", "", "Device name (e.g. Conveyor)")
	f.StringVar(&dev.Protocol, "protocol", dev.Protocol, "Protocol (TCP or RTU)")
	f.IntVar(&dev.ID, "id", dev.ID, "Device ID")
	f.StringVar(&dev.IP, "ip", dev.IP, "Modbus TCP host IP")
	f.IntVar(&dev.Port, "port", dev.Port, "Modbus TCP port")
	f.StringVar(&dev.SerialPort, "cport", dev.SerialPort, "Serial/COM port for RTU")
	f.IntVar(&dev.BaudRate, "baud", dev.BaudRate, "Baud rate")
	f.StringVar(&dev.Parity, "parity", dev.Parity, "Parity (None, Even, Odd)")
	f.IntVar(&dev.DataBits, "databits", dev.DataBits, "Data bits")
	f.IntVar(&dev.StopBits, "stopbits", dev.StopBits, "Stop bits")
	f.IntVar(&dev.Pause, "pause", dev.Pause, "Pause between requests (ms)")
	f.IntVar(&dev.DiscreteInputs.Start, "di-start", dev.DiscreteInputs.Start, "Discrete input start offset")
	f.IntVar(&dev.DiscreteInputs.Size, "di-size", dev.DiscreteInputs.Size, "Discrete input size")
	f.IntVar(&dev.Coils.Start, "do-start", dev.Coils.Start, "Coil start offset")
	f.IntVar(&dev.Coils.Size, "do-size", dev.Coils.Size, "Coil size")
	f.IntVar(&dev.AnalogInputs.Start, "ai-start", dev.AnalogInputs.Start, "Analog input start offset")
	f.IntVar(&dev.AnalogInputs.Size, "ai-size", dev.AnalogInputs.Size, "Analog input size")
	f.IntVar(&dev.AnalogOutRead.Start, "aor-start", dev.AnalogOutRead.Start, "Analog output (read) start offset")
	f.IntVar(&dev.AnalogOutRead.Size, "aor-size", dev.AnalogOutRead.Size, "Analog output (read) size")
	f.IntVar(&dev.AnalogOutWrite.Start, "aow-start", dev.AnalogOutWrite.Start, "Analog output (write) start offset")
	f.IntVar(&dev.AnalogOutWrite.Size, "aow-size", dev.AnalogOutWrite.Size, "Analog output (write) size")
	cmd.MarkFlagRequired("name")
	return cmd
}
