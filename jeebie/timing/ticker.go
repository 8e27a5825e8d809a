package timing

import "time"

// Refresh paces a presentation loop such as the terminal redraw. The host
// loop never uses one.
type Refresh struct {
	ticker *time.Ticker
}

// NewRefresh ticks every interval, or once per emulated frame when
// interval is not positive.
func NewRefresh(interval time.Duration) *Refresh {
	if interval <= 0 {
		interval = FrameDuration()
	}
	return &Refresh{ticker: time.NewTicker(interval)}
}

func (r *Refresh) C() <-chan time.Time {
	return r.ticker.C
}

func (r *Refresh) Stop() {
	r.ticker.Stop()
}
