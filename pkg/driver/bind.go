package driver

import (
	"strings"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// bindMode records whether this execution binds by position or by name.
// The two are mutually exclusive within one execution.
type bindMode int

const (
	bindModeNone bindMode = iota
	bindModePositional
	bindModeNamed
)

// bindSlot is one parameter placeholder with its own variable buffer.
// The buffer's shape is fixed once allocated; a later bind that needs a
// different native representation or more room allocates a fresh buffer
// and rebinds it before the next execute. Capacity never shrinks, so
// repeated execution with same-shaped parameters reuses buffers.
type bindSlot struct {
	name        string
	oraType     oratype.OracleType
	native      dpi.NativeTypeNum
	wireType    dpi.OracleTypeNum
	capacity    uint32
	varH        *dpi.Handle
	data        []dpi.Data
	bound       bool // native-level association with the statement is current
	initialized bool // a value or an explicit null has been stored
}

// ensureBuffer makes the slot's buffer able to hold a value of the given
// type, reallocating only when the current shape cannot. Returns whether
// a (re)allocation happened, which invalidates the native binding.
func (slot *bindSlot) ensureBuffer(s *Statement, t oratype.OracleType) (bool, error) {
	wire, native, size, sizeIsBytes, err := t.VarParams()
	if err != nil {
		return false, newError(ErrKindDataTypeNotSupported, "%s", err)
	}
	if slot.varH != nil && slot.native == native && slot.wireType == wire && size <= slot.capacity {
		slot.oraType = t
		return false, nil
	}
	// Grow, never shrink.
	if size < slot.capacity {
		size = slot.capacity
	}
	varH, data, err := s.conn.api.NewVar(s.conn.h, wire, native, 1, size, sizeIsBytes)
	if err != nil {
		return false, wrapNative(err, "allocate bind buffer")
	}
	if slot.varH != nil {
		slot.varH.Close()
	}
	slot.varH = varH
	slot.data = data
	slot.native = native
	slot.wireType = wire
	slot.capacity = size
	slot.oraType = t
	slot.bound = false
	return true, nil
}

// close releases the slot's buffer. Safe to call repeatedly.
func (slot *bindSlot) close() {
	if slot.varH != nil {
		slot.varH.Close()
		slot.varH = nil
	}
	slot.data = nil
	slot.bound = false
	slot.initialized = false
}

// resolveBindIndex turns a one-based position into a slot index.
func (s *Statement) resolveBindIndex(pos int) (int, error) {
	if pos < 1 || pos > len(s.binds) {
		return 0, newError(ErrKindInvalidBindIndex, "invalid bind index (one-based): %d", pos)
	}
	return pos - 1, nil
}

// resolveBindName turns a placeholder name into a slot index. Matching
// is case-insensitive the way the engine folds unquoted identifiers.
func (s *Statement) resolveBindName(name string) (int, error) {
	want := strings.ToUpper(strings.TrimPrefix(name, ":"))
	for i, n := range s.bindNames {
		if n == want {
			return i, nil
		}
	}
	return 0, newError(ErrKindInvalidBindName, "invalid bind name: %s", name)
}

// enterBindMode validates positional/named exclusivity for this
// execution. Switching modes between executions is allowed, but the
// native associations from the previous mode are stale and must be
// re-established.
func (s *Statement) enterBindMode(mode bindMode) error {
	if s.bindMode == bindModeNone {
		s.bindMode = mode
		if s.lastBindMode != bindModeNone && s.lastBindMode != mode {
			for _, slot := range s.binds {
				slot.bound = false
			}
		}
		return nil
	}
	if s.bindMode != mode {
		return newError(ErrKindBindModeConflict,
			"cannot mix positional and named binds in one execution")
	}
	return nil
}

// Bind sets the value for the positional placeholder at pos (one-based).
// The slot's type is inferred from the value; binding a value that needs
// a bigger or differently shaped buffer reallocates it before the next
// execute.
func (s *Statement) Bind(pos int, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.enterBindMode(bindModePositional); err != nil {
		return err
	}
	idx, err := s.resolveBindIndex(pos)
	if err != nil {
		return err
	}
	return s.bindSlotValue(idx, value)
}

// BindNamed sets the value for the named placeholder. Mixing named and
// positional binds within one execution fails.
func (s *Statement) BindNamed(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.enterBindMode(bindModeNamed); err != nil {
		return err
	}
	idx, err := s.resolveBindName(name)
	if err != nil {
		return err
	}
	return s.bindSlotValue(idx, value)
}

// BindNull binds SQL NULL at pos with an explicit type; a nil value
// carries no type of its own.
func (s *Statement) BindNull(pos int, t oratype.OracleType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.enterBindMode(bindModePositional); err != nil {
		return err
	}
	idx, err := s.resolveBindIndex(pos)
	if err != nil {
		return err
	}
	return s.bindSlotNull(idx, t)
}

// BindNullNamed binds SQL NULL for the named placeholder with an
// explicit type.
func (s *Statement) BindNullNamed(name string, t oratype.OracleType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.enterBindMode(bindModeNamed); err != nil {
		return err
	}
	idx, err := s.resolveBindName(name)
	if err != nil {
		return err
	}
	return s.bindSlotNull(idx, t)
}

func (s *Statement) bindSlotValue(idx int, value any) error {
	t, err := oratype.InferFromGoValue(value)
	if err != nil {
		return newError(ErrKindDataTypeNotSupported, "%s", err)
	}
	slot := s.binds[idx]
	if _, err := slot.ensureBuffer(s, t); err != nil {
		return err
	}
	if err := setData(&slot.data[0], slot.native, slot.oraType, value); err != nil {
		return err
	}
	slot.initialized = true
	return nil
}

func (s *Statement) bindSlotNull(idx int, t oratype.OracleType) error {
	slot := s.binds[idx]
	if _, err := slot.ensureBuffer(s, t); err != nil {
		return err
	}
	slot.data[0].NativeType = slot.native
	slot.data[0].SetNull()
	slot.initialized = true
	return nil
}

// BindValue reads back the current value of a bind slot as a Value,
// which is how OUT parameters are retrieved after execute.
func (s *Statement) BindValue(pos int) (*Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	idx, err := s.resolveBindIndex(pos)
	if err != nil {
		return nil, err
	}
	slot := s.binds[idx]
	if !slot.initialized {
		return nil, newError(ErrKindUninitializedBind,
			"bind %d has not been set; bind a value or execute first", pos)
	}
	return &Value{api: s.conn.api, oraType: slot.oraType, data: &slot.data[0]}, nil
}

// applyBinds refreshes the native-level bindings that were invalidated by
// buffer reallocation, right before execute.
func (s *Statement) applyBinds() error {
	for i, slot := range s.binds {
		if slot.varH == nil || slot.bound {
			continue
		}
		var err error
		if s.bindMode == bindModeNamed {
			err = s.conn.api.BindByName(s.h, s.bindNames[i], slot.varH)
		} else {
			err = s.conn.api.BindByPos(s.h, i+1, slot.varH)
		}
		if err != nil {
			return wrapNative(err, "bind variable")
		}
		slot.bound = true
	}
	return nil
}
