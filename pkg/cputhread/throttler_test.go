package cputhread_test

import (
	"testing"
	"time"

	"hackforge.dev/n2t/pkg/cputhread"
)

func TestThrottlerDoesNotSleepBelowPollInterval(t *testing.T) {
	th := cputhread.NewThrottler(1_000_000, time.Second)
	start := time.Now()
	for i := 0; i < 100; i++ {
		th.Tick()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("expected no throttling before the poll interval elapses, took %s", elapsed)
	}
}

func TestThrottlerSlowsAHighCycleRate(t *testing.T) {
	// target a low rate and check on every tick (zero poll interval): each
	// tick is owed 10ms of ideal time, so the ideal-elapsed-time math forces
	// a real sleep
	th := cputhread.NewThrottler(100, 0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		th.Tick()
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected the throttler to sleep for the shortfall, took %s", elapsed)
	}
}
