// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device acquisition errors.
var (
	// ErrNilDeviceHandle is returned when New is called without a handle.
	ErrNilDeviceHandle = errors.New("render: device handle is nil")

	// ErrNoHALAccess is returned when the handle does not expose the
	// underlying HAL device and queue.
	ErrNoHALAccess = errors.New("render: device handle does not expose HAL types")
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) implements DeviceHandle and passes it to
// New, so glade shares the application's GPU device rather than
// creating its own. DeviceHandle is an alias for
// gpucontext.DeviceProvider, keeping full compatibility with the
// gpucontext ecosystem under a glade-specific name.
//
// The pipelines need direct HAL access, so the provider must also
// implement HalDevice() any and HalQueue() any returning wgpu/hal
// types (the gpucontext.HalProvider convention).
type DeviceHandle = gpucontext.DeviceProvider

// halFromHandle extracts the HAL device and queue from a host handle.
func halFromHandle(handle DeviceHandle) (hal.Device, hal.Queue, error) {
	if handle == nil {
		return nil, nil, ErrNilDeviceHandle
	}

	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := handle.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALAccess
	}

	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return device, queue, nil
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Useful in tests and for hosts probing glade without a GPU.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
