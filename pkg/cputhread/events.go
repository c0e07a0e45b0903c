package cputhread

// HostMessage is sent from the host (main) thread to the CPU thread.
type HostMessage int

const (
	// CpuStart tells a Pending thread to begin executing.
	CpuStart HostMessage = iota
	// HostFinished tells a Running thread to stop cleanly.
	HostFinished
	// HostError tells the thread its peer has failed.
	HostError
)

// CpuMessage is sent from the CPU thread back to the host.
type CpuMessage int

const (
	// CpuFinished acknowledges a clean shutdown.
	CpuFinished CpuMessage = iota
	// CpuError reports that the thread has entered the Error state.
	CpuError
	// CpuHeartbeat is emitted periodically while Running, doubling as the
	// thread's only opportunity to notice a host-requested stop.
	CpuHeartbeat
)
