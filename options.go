package quill

// options holds configuration for opening a document.
type options struct {
	// detachStreams copies every stream payload out of the source during
	// Open, making the parsed graph independent of the open file.
	detachStreams bool
}

// defaultOptions returns the default open options.
func defaultOptions() options {
	return options{
		detachStreams: false,
	}
}

// Option configures Open.
type Option func(*options)

// WithDetachedStreams copies stream payloads into memory while opening, so
// the document stays fully usable after Close. Without it, payloads are
// readable only while the underlying file is open.
func WithDetachedStreams() Option {
	return func(o *options) {
		o.detachStreams = true
	}
}
