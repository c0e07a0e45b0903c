// Package emulator wires the Hack computer's pieces — ROM, shared RAM, the
// Chipset, its CPU thread, and the screen pipeline — behind a small
// callback surface modeled on a host-driven windowing event loop
// (resume/redraw/close), so the host GUI glue (window creation, GL
// context, input) never has to reach into the core's internals.
package emulator

import (
	"time"

	"github.com/pkg/errors"

	"hackforge.dev/n2t/pkg/chipset"
	"hackforge.dev/n2t/pkg/cputhread"
	"hackforge.dev/n2t/pkg/ram"
	"hackforge.dev/n2t/pkg/screen"
)

// Default pacing parameters for the CPU thread.
const (
	DefaultHeartbeatInterval = 10 * time.Millisecond
	DefaultThrottlerPoll     = 5 * time.Millisecond
	DefaultCyclesPerSecond   = 1_000_000
)

// HostWindow is the boundary between the emulator core and whatever GUI
// toolkit the host uses to create a window and present pixels. Keeping it
// this thin means Core never imports a windowing package directly.
type HostWindow interface {
	// Present uploads a tightly-packed RGBA frame of the given physical
	// size to the window's surface and displays it.
	Present(width, height int, pixels []byte) error
	// RequestRedraw schedules another OnRedrawRequested callback; how soon
	// is up to the host (e.g. vsync-paced).
	RequestRedraw()
}

// Core holds the emulator's entire runtime state. Its three callbacks
// (OnResume, OnWindowClose, OnRedrawRequested) are meant to be invoked by a
// thin host loop in a fixed order: resume spawns the CPU thread,
// redraw/execution interleave freely afterward, and close tears the CPU
// thread down before the process exits.
type Core struct {
	rom ram.ROM
	ram *ram.RAM

	dim    screen.Dimension
	scaler screen.Scaler

	inbox  chan cputhread.HostMessage
	outbox chan cputhread.CpuMessage
	thread *cputhread.CpuThread

	snapshot []int16
}

// New builds a Core around the given ROM image, ready for OnResume. scaleX
// and scaleY are the host's DPI scale factors applied to the logical
// 512x256 display.
func New(rom ram.ROM, scaleX, scaleY float64) *Core {
	dim := screen.Default()
	return &Core{
		rom:      rom,
		ram:      ram.New(),
		dim:      dim,
		scaler:   screen.NewScaler(dim, scaleX, scaleY),
		snapshot: make([]int16, screen.Words),
	}
}

// PhysicalSize is the window size the host should create, matching the
// scaler's output.
func (c *Core) PhysicalSize() screen.Dimension { return c.scaler.PhysicalSize() }

// OnResume spawns the CPU thread, sends it CpuStart, and requests the
// first redraw. Call exactly once, before any OnRedrawRequested.
func (c *Core) OnResume(win HostWindow) {
	c.inbox = make(chan cputhread.HostMessage, 4)
	c.outbox = make(chan cputhread.CpuMessage, 4)

	chip := chipset.New(c.rom, c.ram, false)
	throttler := cputhread.NewThrottler(DefaultCyclesPerSecond, DefaultThrottlerPoll)
	c.thread = cputhread.New(chip, c.inbox, c.outbox, DefaultHeartbeatInterval, throttler)

	go c.thread.Start()
	c.inbox <- cputhread.CpuStart
	win.RequestRedraw()
}

// OnWindowClose tells the CPU thread to stop and blocks briefly draining
// its acknowledgement; the host should exit its loop once this returns.
func (c *Core) OnWindowClose() {
	select {
	case c.inbox <- cputhread.HostFinished:
	default:
	}
	// drain until the thread acknowledges or gives up waiting; the thread
	// observes HostFinished at its next heartbeat tick, never instantly.
	deadline := time.After(time.Second)
	for {
		select {
		case <-c.outbox:
			if c.thread.State() == cputhread.Finished || c.thread.State() == cputhread.Error {
				return
			}
		case <-deadline:
			return
		}
	}
}

// OnRedrawRequested snapshots video memory, scales it into a fresh frame
// buffer, presents it through win, and asks for the next redraw.
func (c *Core) OnRedrawRequested(win HostWindow) error {
	if err := c.ram.CopySlice(screen.Base, c.snapshot); err != nil {
		return errors.Wrap(err, "emulator: snapshotting video memory")
	}

	physical := c.scaler.PhysicalSize()
	frame := make([]byte, physical.Width*physical.Height*4)
	if err := c.scaler.Scale(screen.NewBitIterator(c.snapshot), frame); err != nil {
		return errors.Wrap(err, "emulator: scaling frame")
	}

	if err := win.Present(physical.Width, physical.Height, frame); err != nil {
		return errors.Wrap(err, "emulator: presenting frame")
	}
	win.RequestRedraw()
	return nil
}
