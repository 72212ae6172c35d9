package dpi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// HandleKind distinguishes the native handle families the driver
// allocates.
type HandleKind uint32

// Handle kinds.
const (
	HandleConn HandleKind = iota + 1
	HandleStmt
	HandleVar
	HandleLOB
	HandleObject
)

// String implements fmt.Stringer.
func (k HandleKind) String() string {
	switch k {
	case HandleConn:
		return "connection"
	case HandleStmt:
		return "statement"
	case HandleVar:
		return "variable"
	case HandleLOB:
		return "lob"
	case HandleObject:
		return "object"
	default:
		return fmt.Sprintf("handle(%d)", uint32(k))
	}
}

// Handle is an owning wrapper around one opaque native handle. Release
// runs exactly once no matter how many goroutines call Close and no
// matter which error path triggered it; a released handle never reaches
// the native layer again.
type Handle struct {
	kind    HandleKind
	id      string
	release func()
	once    sync.Once
	closed  atomic.Bool
}

// NewHandle allocates an owning wrapper. release is invoked exactly once,
// on the first Close. Allocation before Init fails.
func NewHandle(kind HandleKind, release func()) (*Handle, error) {
	if !Initialized() {
		return nil, ErrNotInitialized
	}
	return &Handle{
		kind:    kind,
		id:      uuid.NewString(),
		release: release,
	}, nil
}

// Kind reports the handle family.
func (h *Handle) Kind() HandleKind {
	return h.kind
}

// ID is the process-unique identity of this handle. Native layer
// implementations key their internal state on it.
func (h *Handle) ID() string {
	return h.id
}

// Close releases the underlying native handle. It is idempotent: the
// second and later calls are no-ops.
func (h *Handle) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		if h.release != nil {
			h.release()
		}
	})
}

// Closed reports whether Close has run.
func (h *Handle) Closed() bool {
	return h.closed.Load()
}

// String implements fmt.Stringer.
func (h *Handle) String() string {
	return fmt.Sprintf("%s handle %s", h.kind, h.id)
}
