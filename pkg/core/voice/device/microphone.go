// Package device binds the voice package to real audio hardware.
package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/vango-go/vai-assistant/pkg/core/voice"
)

// Microphone captures 16-bit mono PCM from the default input device. The
// device is held only while a capture is open.
type Microphone struct {
	// PeriodMillis is the capture callback period. Defaults to 20ms.
	PeriodMillis uint32
}

// Open starts a capture at sampleRate.
func (m *Microphone) Open(ctx context.Context, sampleRate int) (voice.Capture, error) {
	if sampleRate <= 0 {
		sampleRate = voice.DefaultSampleRate
	}
	period := m.PeriodMillis
	if period == 0 {
		period = 20
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	c := &capture{
		malgoCtx: malgoCtx,
		frames:   make(chan []byte, 256),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = period

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.push(input)
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	c.device = device

	if err := device.Start(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	return c, nil
}

type capture struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	frames   chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *capture) push(input []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	frame := make([]byte, len(input))
	copy(frame, input)
	select {
	case c.frames <- frame:
	default:
		// Consumer stalled; drop rather than block the audio thread.
	}
}

func (c *capture) Frames() <-chan []byte {
	return c.frames
}

func (c *capture) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.frames)
	c.mu.Unlock()

	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
	}
	err := c.malgoCtx.Uninit()
	c.malgoCtx.Free()
	return err
}

// Info describes one audio device.
type Info struct {
	Name      string
	IsDefault bool
}

// ListDevices returns the capture and playback devices known to the host.
func ListDevices() (capture []Info, playback []Info, err error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	list := func(kind malgo.DeviceType) ([]Info, error) {
		devices, err := malgoCtx.Devices(kind)
		if err != nil {
			return nil, err
		}
		out := make([]Info, 0, len(devices))
		for _, d := range devices {
			out = append(out, Info{Name: d.Name(), IsDefault: d.IsDefault != 0})
		}
		return out, nil
	}

	if capture, err = list(malgo.Capture); err != nil {
		return nil, nil, fmt.Errorf("list capture devices: %w", err)
	}
	if playback, err = list(malgo.Playback); err != nil {
		return nil, nil, fmt.Errorf("list playback devices: %w", err)
	}
	return capture, playback, nil
}

var _ voice.Microphone = (*Microphone)(nil)
