package domain

// VisibilityEvent reports the visible fraction of one slide container.
// Events arrive in batches from the host's intersection observer.
type VisibilityEvent struct {
	Index int
	Ratio float64
}
