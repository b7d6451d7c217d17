package differ

// Option is a functional option for configuring a Differ.
type Option func(*Differ)

// WithIgnoredFields sets fields to ignore during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *Differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithContext sets the number of context lines of unified diffs.
func WithContext(lines int) Option {
	return func(d *Differ) {
		if lines >= 0 {
			d.context = lines
		}
	}
}
