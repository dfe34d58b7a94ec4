package appkit

// Middleware for cross-cutting concerns with buffered responses.
type Middleware func(Handler) Handler

// Chain wraps the inner handler h with middleware. The order is that of the Gorilla and Chi
// router. That is: the middleware provided first is called first and is the "outer" most
// wrapping, the middleware provided last will be the "inner most" wrapping (closest to the
// handler).
func Chain(h Handler, m ...Middleware) Handler {
	if len(m) < 1 {
		return h
	}

	wrapped := h
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}
