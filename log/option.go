package log

// Option is one functional configuration setting for a [Logger]. Options are
// applied in order, so later options override earlier ones.
type Option func(config) config

// apply folds options over a configuration in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}
