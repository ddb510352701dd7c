package listener

import (
	"fmt"

	"blitter.com/go/bcvi/wire"
)

// Handler is a registered back-channel command. Handlers must never
// let a failure escape Invoke past the connection boundary: a handler
// error ends that connection only, the listener keeps accepting.
type Handler interface {
	// Name is the Command header value this handler answers to.
	Name() string
	// Doc returns documentation text for commands_pod, rendered with
	// Content-Type text/pod.
	Doc() string
	// Invoke runs the handler against req, using conn for any body
	// streaming the handler needs to do itself (a 300 response). The
	// engine sends the final 200 after Invoke returns unless the
	// handler already wrote a terminal response.
	Invoke(ctx *Context, req *wire.Request, conn Conn) error
}

// Registry maps command names to handlers. Plugin modules register
// into the same map at listener startup; the last registration for a
// given name wins, and Register reports whether it overrode an
// existing entry so the caller can warn about the collision.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds h under h.Name(), returning true if it replaced an
// already-registered handler of the same name.
func (r *Registry) Register(h Handler) (overridden bool) {
	_, overridden = r.handlers[h.Name()]
	r.handlers[h.Name()] = h
	return overridden
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered command names, for commands_pod.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// DocAll renders documentation for every registered command, in the
// shape commands_pod streams back as its 300 body.
func (r *Registry) DocAll() string {
	out := ""
	for _, name := range r.Names() {
		out += fmt.Sprintf("=head1 %s\n\n%s\n\n", name, r.handlers[name].Doc())
	}
	return out
}
