package engine

import "context"

// Page is the subset of a live browser tab the engine drives.
// Implementations must be safe to call sequentially from one goroutine;
// concurrent use of a single Page is not supported.
type Page interface {
	// Navigate loads url and returns once the document has been requested.
	Navigate(ctx context.Context, url string) error

	// CountElements returns the number of elements matching a CSS selector.
	// Zero matches is not an error.
	CountElements(ctx context.Context, selector string) (int, error)

	// HTML returns the outer HTML of the current document.
	HTML(ctx context.Context) (string, error)

	// ScrollToBottom scrolls the viewport to the end of the document.
	ScrollToBottom(ctx context.Context) error

	// Screenshot captures the visible viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Browser is one exclusively-owned browser session.
type Browser interface {
	Page

	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Launcher starts browser sessions, optionally routed through proxy.
type Launcher interface {
	Launch(ctx context.Context, proxy string) (Browser, error)
}
