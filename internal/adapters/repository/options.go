package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMaxLimit caps how many entries TopN returns. Values <= 0 disable the cap.
func WithMaxLimit(n int) Option {
	return func(s *TreapStore) {
		s.maxLimit = n
	}
}

// WithRegions restricts the store to the given regions; writes and reads for
// any other region fail with ErrInvalidRegion.
func WithRegions(regions ...string) Option {
	return func(s *TreapStore) {
		s.allowed = make(map[string]bool, len(regions))
		for _, r := range regions {
			s.allowed[r] = true
		}
	}
}
