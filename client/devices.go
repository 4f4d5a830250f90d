// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openplc-tools/openplc-cli/internal/scrape"
)

// Modbus protocols accepted by the device form.
const (
	ProtocolTCP = "TCP"
	ProtocolRTU = "RTU"
)

// Serial parity values accepted by the device form.
const (
	ParityNone = "None"
	ParityEven = "Even"
	ParityOdd  = "Odd"
)

// RegisterRange addresses a contiguous block of one Modbus register class.
type RegisterRange struct {
	Start int
	Size  int
}

// DeviceConfig describes one Modbus slave device exactly as the
// add-modbus-device form expects it. TCP devices use IP/Port; RTU devices use
// the serial parameters. The form wants every field present regardless of
// protocol, so all of them are always submitted.
type DeviceConfig struct {
	Name     string
	Protocol string // TCP or RTU
	ID       int

	// Modbus TCP
	IP   string
	Port int

	// Modbus RTU
	SerialPort string // e.g. /dev/ttyS0
	BaudRate   int
	Parity     string // None, Even, Odd
	DataBits   int
	StopBits   int
	Pause      int // inter-request pause, ms

	DiscreteInputs RegisterRange // %IX
	Coils          RegisterRange // %QX
	AnalogInputs   RegisterRange // %IW
	AnalogOutRead  RegisterRange // %QW read
	AnalogOutWrite RegisterRange // %QW write
}

// DefaultDeviceConfig returns a DeviceConfig mirroring the defaults of the
// web form: a TCP device with id 1 on 127.0.0.1:502, standard serial
// settings, and all register ranges at (0, 8).
func DefaultDeviceConfig() DeviceConfig {
	r := RegisterRange{Start: 0, Size: 8}
	return DeviceConfig{
		Protocol:       ProtocolTCP,
		ID:             1,
		IP:             "127.0.0.1",
		Port:           502,
		SerialPort:     "/dev/ttyS0",
		BaudRate:       115200,
		Parity:         ParityNone,
		DataBits:       8,
		StopBits:       1,
		Pause:          0,
		DiscreteInputs: r,
		Coils:          r,
		AnalogInputs:   r,
		AnalogOutRead:  r,
		AnalogOutWrite: r,
	}
}

// Validate checks the enum fields before anything is sent.
func (d *DeviceConfig) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	switch d.Protocol {
	case ProtocolTCP, ProtocolRTU:
	default:
		return fmt.Errorf("invalid protocol %q (want TCP or RTU)", d.Protocol)
	}
	switch d.Parity {
	case ParityNone, ParityEven, ParityOdd:
	default:
		return fmt.Errorf("invalid parity %q (want None, Even or Odd)", d.Parity)
	}
	return nil
}

// formFields flattens the config into the multipart fields of the
// add-modbus-device form, integers rendered as decimal text.
func (d *DeviceConfig) formFields() map[string]string {
	return map[string]string{
		"device_name":     d.Name,
		"device_protocol": d.Protocol,
		"device_id":       strconv.Itoa(d.ID),
		"device_ip":       d.IP,
		"device_port":     strconv.Itoa(d.Port),
		"device_cport":    d.SerialPort,
		"device_baud":     strconv.Itoa(d.BaudRate),
		"device_parity":   d.Parity,
		"device_data":     strconv.Itoa(d.DataBits),
		"device_stop":     strconv.Itoa(d.StopBits),
		"device_pause":    strconv.Itoa(d.Pause),
		"di_start":        strconv.Itoa(d.DiscreteInputs.Start),
		"di_size":         strconv.Itoa(d.DiscreteInputs.Size),
		"do_start":        strconv.Itoa(d.Coils.Start),
		"do_size":         strconv.Itoa(d.Coils.Size),
		"ai_start":        strconv.Itoa(d.AnalogInputs.Start),
		"ai_size":         strconv.Itoa(d.AnalogInputs.Size),
		"aor_start":       strconv.Itoa(d.AnalogOutRead.Start),
		"aor_size":        strconv.Itoa(d.AnalogOutRead.Size),
		"aow_start":       strconv.Itoa(d.AnalogOutWrite.Start),
		"aow_size":        strconv.Itoa(d.AnalogOutWrite.Size),
	}
}

// ListModbusDevices scrapes the device table from /modbus. The rows are
// whatever columns the page renders; the client never caches or interprets
// them.
func (c *Client) ListModbusDevices(ctx context.Context) ([]scrape.Row, error) {
	return c.listTable(ctx, "list modbus devices", "/modbus")
}

// AddModbusDevice registers a new Modbus slave device via the web form.
func (c *Client) AddModbusDevice(ctx context.Context, dev DeviceConfig) error {
	if err := dev.Validate(); err != nil {
		return fmt.Errorf("add modbus device: %w", err)
	}
	resp, err := c.session.PostMultipart(ctx, "/add-modbus-device", dev.formFields(), nil)
	if err != nil {
		return fmt.Errorf("add modbus device: %w", err)
	}
	return checkStatus("add modbus device", resp)
}
