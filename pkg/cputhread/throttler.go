package cputhread

import "time"

// Throttler paces a cycle loop toward a target cycles-per-second rate.
// Every PollInterval it compares the ideal elapsed time for the cycles run
// since the last poll against the actual elapsed time, and sleeps for any
// shortfall. It never "pays back" a past oversleep: once behind schedule,
// later cycles simply run at full speed. A long GC pause or scheduling gap
// costs permanent rate, never cycle count.
type Throttler struct {
	cyclesPerSecond int
	pollInterval    time.Duration

	cyclesSincePoll int
	lastPoll        time.Time
}

// NewThrottler targets cyclesPerSecond, checking every pollInterval.
func NewThrottler(cyclesPerSecond int, pollInterval time.Duration) *Throttler {
	return &Throttler{
		cyclesPerSecond: cyclesPerSecond,
		pollInterval:    pollInterval,
		lastPoll:        time.Now(),
	}
}

// Tick registers one executed cycle and sleeps if the loop is running ahead
// of the target rate.
func (t *Throttler) Tick() {
	t.cyclesSincePoll++

	elapsed := time.Since(t.lastPoll)
	if elapsed < t.pollInterval {
		return
	}

	ideal := time.Duration(t.cyclesSincePoll) * time.Second / time.Duration(t.cyclesPerSecond)
	if shortfall := ideal - elapsed; shortfall > 0 {
		time.Sleep(shortfall)
	}

	t.cyclesSincePoll = 0
	t.lastPoll = time.Now()
}
