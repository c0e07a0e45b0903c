// Package cputhread drives a chipset.Chipset on its own goroutine,
// exchanging control messages with the host over a pair of channels so the
// host's event loop never blocks on CPU execution.
package cputhread

import (
	"time"

	"hackforge.dev/n2t/pkg/chipset"
)

// State is one of the four stages of a CpuThread's lifecycle.
type State int

const (
	Pending State = iota
	Running
	Finished
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	default:
		return "Error"
	}
}

// startTimeout bounds how long Start waits, polling, for a CpuStart message
// before giving up without ever running an instruction.
const startTimeout = 2500 * time.Millisecond

// CpuThread owns a Chipset plus the message channels connecting it to the
// host thread. Construct with New and run with Start on its own goroutine
// (e.g. `go thread.Start()`); CpuThread is not safe to share otherwise.
type CpuThread struct {
	chipset *chipset.Chipset
	inbox   <-chan HostMessage
	outbox  chan<- CpuMessage

	state             State
	heartbeatInterval time.Duration
	throttler         *Throttler

	pollInterval time.Duration // how often Start spins while waiting to start
}

// New builds a CpuThread around chip, wired to inbox/outbox for host
// communication, emitting a Heartbeat (dropped if the outbox is full) and
// polling the inbox once heartbeatInterval has elapsed since the last one,
// and pacing execution via throttler.
func New(chip *chipset.Chipset, inbox <-chan HostMessage, outbox chan<- CpuMessage, heartbeatInterval time.Duration, throttler *Throttler) *CpuThread {
	return &CpuThread{
		chipset:           chip,
		inbox:             inbox,
		outbox:            outbox,
		state:             Pending,
		heartbeatInterval: heartbeatInterval,
		throttler:         throttler,
		pollInterval:      time.Millisecond,
	}
}

// State returns the thread's current lifecycle stage.
func (t *CpuThread) State() State { return t.state }

// Start blocks, running the thread's full lifecycle: the start handshake,
// the execution loop, and the exit. It returns once the thread reaches
// Finished or Error (or the start handshake times out, in which case it
// returns while still Pending).
func (t *CpuThread) Start() {
	if !t.waitForStart() {
		return
	}

	lastHeartbeat := time.Now()
	for t.state == Running {
		if time.Since(lastHeartbeat) > t.heartbeatInterval {
			lastHeartbeat = time.Now()
			t.sendHeartbeat()
			t.checkInbox()
		}

		if t.state != Running {
			break
		}
		if err := t.chipset.Step(); err != nil {
			t.fail()
			return
		}
		t.throttler.Tick()
	}
}

// waitForStart polls the inbox for up to startTimeout for a CpuStart
// message. Returns true if the thread transitioned to Running.
func (t *CpuThread) waitForStart() bool {
	deadline := time.Now().Add(startTimeout)
	for time.Now().Before(deadline) {
		select {
		case msg := <-t.inbox:
			switch msg {
			case CpuStart:
				t.state = Running
				return true
			case HostError:
				t.state = Error
				t.outbox <- CpuError
				return false
			}
		default:
			time.Sleep(t.pollInterval)
		}
	}
	return false
}

// checkInbox is the only point, besides waitForStart, where the thread
// observes host-originated messages: a non-blocking poll taken right after
// each heartbeat.
func (t *CpuThread) checkInbox() {
	select {
	case msg := <-t.inbox:
		switch msg {
		case HostError:
			t.state = Error
			t.outbox <- CpuError
		case HostFinished:
			t.state = Finished
			t.outbox <- CpuFinished
		}
	default:
	}
}

func (t *CpuThread) sendHeartbeat() {
	select {
	case t.outbox <- CpuHeartbeat:
	default:
		// the host isn't listening; a heartbeat is advisory, never worth blocking on.
	}
}

func (t *CpuThread) fail() {
	t.state = Error
	select {
	case t.outbox <- CpuError:
	default:
	}
}
