package extract

// Options configures which cell details are read besides values.
type Options struct {
	IncludeStyles     bool
	IncludeHyperlinks bool
	IncludeRichText   bool
}

// DefaultOptions reads everything.
func DefaultOptions() Options {
	return Options{
		IncludeStyles:     true,
		IncludeHyperlinks: true,
		IncludeRichText:   true,
	}
}

// Option modifies Options.
type Option func(*Options)

func WithStyles(enabled bool) Option {
	return func(o *Options) { o.IncludeStyles = enabled }
}

func WithHyperlinks(enabled bool) Option {
	return func(o *Options) { o.IncludeHyperlinks = enabled }
}

func WithRichText(enabled bool) Option {
	return func(o *Options) { o.IncludeRichText = enabled }
}
