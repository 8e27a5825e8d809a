package timing

import "time"

// Emulated machine clock.
const (
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// Host loop cadences.
const (
	SpeedReportInterval  = time.Second
	InputDrainInterval   = time.Second / 100
	RequestCheckInterval = time.Second / 3
	StepsPerBatch        = 20
)

// TargetFPS calculates the exact frame rate of the emulated display.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// CyclesToDuration converts machine cycles to emulated wall time.
func CyclesToDuration(cycles uint64) time.Duration {
	secs, rem := cycles/CPUFrequency, cycles%CPUFrequency
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/CPUFrequency)
}
