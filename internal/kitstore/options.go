package kitstore

// SanitizeFunc cleans author supplied text such as kit titles.
type SanitizeFunc func(string) string

type Options struct {
	// FirstImportID is the id handed to the first imported template.
	FirstImportID int
	Sanitize      SanitizeFunc
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		FirstImportID: 1000,
		Sanitize:      sanitizeText,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.FirstImportID <= 0 {
		opts.FirstImportID = 1000
	}
	if opts.Sanitize == nil {
		opts.Sanitize = sanitizeText
	}
	return opts
}

func WithFirstImportID(id int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FirstImportID = id
	}
}

func WithSanitizer(fn SanitizeFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sanitize = fn
	}
}
