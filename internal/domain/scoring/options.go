package scoring

// Unit selects the logarithm base of the information-theoretic metrics.
type Unit int

// Supported units.
const (
	Bits Unit = iota
	Nats
)

func (u Unit) String() string {
	if u == Nats {
		return "nats"
	}
	return "bits"
}

// Option applies a configuration option to a metric computation.
type Option func(*options)

type options struct {
	unit Unit
}

func newOptions(opts []Option) options {
	o := options{unit: Bits}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithUnit sets the unit of entropy and mutual information.
func WithUnit(u Unit) Option {
	return func(o *options) {
		o.unit = u
	}
}

// WithNats reports entropies in nats when nats is true and in bits otherwise.
func WithNats(nats bool) Option {
	if nats {
		return WithUnit(Nats)
	}
	return WithUnit(Bits)
}
