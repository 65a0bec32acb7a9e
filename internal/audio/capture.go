// internal/audio/capture.go
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/ColonelBlimp/lasertag/internal/buffer"
)

var (
	ErrNotInitialized = errors.New("audio capture not initialized")
	ErrAlreadyRunning = errors.New("audio capture already running")
	ErrNotRunning     = errors.New("audio capture not running")
)

const adcMid = float64(buffer.MaxSample) / 2

// Config holds audio capture configuration
type Config struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // ADC rate, 100000 for the tagger's filters
	Channels    uint32 // the sensor is read from the first channel
	BufferSize  uint32 // frames per callback
}

// DefaultConfig returns the capture settings for a sensor on a line input.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  100000,
		Channels:    1,
		BufferSize:  1000,
	}
}

// SampleCallback is called from the audio thread with each block converted
// to ADC codes. It must be non-blocking and fast.
type SampleCallback func(samples []buffer.Sample)

// Capture reads a light sensor wired to an audio input and delivers it as
// 12-bit ADC codes. It plays the part of the sampling interrupt.
type Capture struct {
	config      Config
	ctx         *malgo.AllocatedContext
	device      *malgo.Device
	running     atomic.Bool
	mu          sync.Mutex
	callbackPtr atomic.Pointer[SampleCallback]
}

// New creates a new audio capture instance
func New(cfg Config) *Capture {
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	return &Capture{config: cfg}
}

// SetCallback sets the callback for captured blocks. Set before Start.
func (c *Capture) SetCallback(cb SampleCallback) {
	if cb == nil {
		c.callbackPtr.Store(nil)
	} else {
		c.callbackPtr.Store(&cb)
	}
}

// Init initializes the audio backend
func (c *Capture) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	c.ctx = ctx
	return nil
}

// ListDevices returns available capture devices
func (c *Capture) ListDevices() ([]malgo.DeviceInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listDevices()
}

func (c *Capture) listDevices() ([]malgo.DeviceInfo, error) {
	if c.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := c.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Start begins capture. It stops when ctx is cancelled.
func (c *Capture) Start(ctx context.Context) error {
	if c.running.Load() {
		return ErrAlreadyRunning
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return ErrNotInitialized
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = c.config.SampleRate
	deviceConfig.PeriodSizeInFrames = c.config.BufferSize
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = c.config.Channels

	if c.config.DeviceIndex >= 0 {
		devices, err := c.listDevices()
		if err != nil {
			return err
		}
		if c.config.DeviceIndex >= len(devices) {
			return fmt.Errorf("device index %d out of range (have %d devices)",
				c.config.DeviceIndex, len(devices))
		}
		deviceConfig.Capture.DeviceID = devices[c.config.DeviceIndex].ID.Pointer()
	}

	channels := int(c.config.Channels)
	onRecvFrames := func(_, inputSamples []byte, _ uint32) {
		if len(inputSamples) == 0 {
			return
		}
		if cbPtr := c.callbackPtr.Load(); cbPtr != nil {
			(*cbPtr)(bytesToSamples(inputSamples, channels))
		}
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}

	c.device = device
	c.running.Store(true)

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()
	return nil
}

// Stop stops audio capture
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return ErrNotRunning
	}
	c.stopDevice()
	return nil
}

func (c *Capture) stopDevice() {
	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	c.running.Store(false)
}

// Close releases all audio resources
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		c.stopDevice()
	}
	if c.ctx != nil {
		if err := c.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		c.ctx.Free()
		c.ctx = nil
	}
	return nil
}

// IsRunning returns true if capture is active
func (c *Capture) IsRunning() bool {
	return c.running.Load()
}

// ToSample converts a normalized audio sample in [-1, 1] to an ADC code.
// Values outside the range clip.
func ToSample(v float32) buffer.Sample {
	x := math.Round(float64(v)*adcMid + adcMid)
	return buffer.Sample(math.Max(0, math.Min(float64(buffer.MaxSample), x)))
}

// bytesToSamples converts interleaved little-endian float32 frames to ADC
// codes, keeping the first channel.
func bytesToSamples(data []byte, channels int) []buffer.Sample {
	frame := 4 * channels
	n := len(data) / frame
	out := make([]buffer.Sample, n)
	for i := range out {
		bits := binary.LittleEndian.Uint32(data[i*frame:])
		out[i] = ToSample(math.Float32frombits(bits))
	}
	return out
}
