package visibility

// DefaultEpsilon is the angular jitter, in radians, applied either side of
// every endpoint angle.
const DefaultEpsilon = 0.0001

type options struct {
	epsilon      float64
	dedupe       float64
	parallel     ParallelTest
	spatialIndex bool
	keepColinear bool
}

func defaultOptions() options {
	return options{
		epsilon:  DefaultEpsilon,
		parallel: ParallelCross,
	}
}

// Option configures a Solver.
type Option func(*options)

// WithEpsilon sets the angular jitter around each endpoint.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

// WithDedupeTolerance merges endpoints closer than tol before sweeping.
// Zero keeps exact-equality deduplication.
func WithDedupeTolerance(tol float64) Option {
	return func(o *options) {
		if tol >= 0 {
			o.dedupe = tol
		}
	}
}

// WithParallelTest selects the parallel-ray rejection rule.
func WithParallelTest(t ParallelTest) Option {
	return func(o *options) {
		o.parallel = t
	}
}

// WithSpatialIndex makes the solver prefilter segments through the store's
// R-tree instead of scanning every segment per probe.
func WithSpatialIndex() Option {
	return func(o *options) {
		o.spatialIndex = true
	}
}

// WithKeepColinear keeps every probe hit, including those lying on a straight
// edge between their neighbours.
func WithKeepColinear() Option {
	return func(o *options) {
		o.keepColinear = true
	}
}
