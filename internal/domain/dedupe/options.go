package dedupe

// Option applies a configuration option to the deduper.
type Option func(*ringDeduper)

// WithMaxSize sets how many upload ids are remembered. Values <= 0 remember
// every id.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.capacity = maxSize
	}
}
