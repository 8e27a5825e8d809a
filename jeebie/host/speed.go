package host

// DefaultSpeedWindow is how many speed readings the rolling average spans.
const DefaultSpeedWindow = 32

// SpeedStats keeps the most recent speed readings.
type SpeedStats struct {
	samples []float64
	next    int
	count   int
}

func NewSpeedStats(window int) *SpeedStats {
	if window < 1 {
		window = DefaultSpeedWindow
	}
	return &SpeedStats{samples: make([]float64, window)}
}

func (s *SpeedStats) Add(v float64) {
	s.samples[s.next] = v
	s.next = (s.next + 1) % len(s.samples)
	if s.count < len(s.samples) {
		s.count++
	}
}

// Current returns the latest reading, or 0 when there is none.
func (s *SpeedStats) Current() float64 {
	if s.count == 0 {
		return 0
	}
	return s.samples[(s.next-1+len(s.samples))%len(s.samples)]
}

// Average returns the mean of the readings in the window.
func (s *SpeedStats) Average() float64 {
	if s.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < s.count; i++ {
		sum += s.samples[(s.next-1-i+2*len(s.samples))%len(s.samples)]
	}
	return sum / float64(s.count)
}

func (s *SpeedStats) Len() int {
	return s.count
}

func (s *SpeedStats) Reset() {
	s.next, s.count = 0, 0
}
