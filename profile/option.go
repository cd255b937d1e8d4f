//go:build pprof

package profile

// Option accumulates [github.com/pkg/profile] settings onto a control.
// Each option appends the pkg/profile functions it selects; an option whose
// input is unrecognized appends nothing.
type Option func(control) control

// apply folds options over a control in order.
func apply(c control, opts ...Option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// newControl builds a control from the provided options.
func newControl(opts ...Option) control {
	return apply(control{}, opts...)
}
