package trampoline

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	// ErrNilHandle is the panic value of trampolines called with a nil handle.
	ErrNilHandle = errors.New("trampoline: nil handle")
	// ErrOffsetRange is the panic value of field trampolines whose offset does not fit
	// inside the pointee or is misaligned for the field type.
	ErrOffsetRange = errors.New("trampoline: offset outside of pointee")
)

// HandleMismatchError is the panic value of trampolines that receive a handle
// tagged with a different pointee type than the one they were generated for.
type HandleMismatchError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *HandleMismatchError) Error() string {
	return fmt.Sprintf("trampoline: handle to %s used where %s was expected", e.Got, e.Want)
}

// Handle is an opaque reference to a native value handed to the managed side.
// The managed side sees only the address; the tag records the pointee type so that
// trampolines can detect misuse. Handles built with Raw carry no tag and are not
// checked.
type Handle struct {
	ptr unsafe.Pointer
	tag reflect.Type
}

// HandleOf returns a tagged handle to p.
func HandleOf[T any](p *T) Handle {
	if p == nil {
		return Handle{}
	}
	return Handle{ptr: unsafe.Pointer(p), tag: reflect.TypeFor[T]()}
}

// Raw wraps an untagged pointer, for example one received from the runtime.
func Raw(p unsafe.Pointer) Handle {
	return Handle{ptr: p}
}

// Addr returns the address passed across the interop boundary.
func (h Handle) Addr() uintptr {
	return uintptr(h.ptr)
}

// Pointer returns the underlying pointer.
func (h Handle) Pointer() unsafe.Pointer {
	return h.ptr
}

// Tag returns the pointee type, or nil for raw handles.
func (h Handle) Tag() reflect.Type {
	return h.tag
}

func (h Handle) IsNil() bool {
	return h.ptr == nil
}

func (h Handle) String() string {
	if h.tag == nil {
		return fmt.Sprintf("handle(%#x)", h.Addr())
	}
	return fmt.Sprintf("handle(%s@%#x)", h.tag, h.Addr())
}

// check panics unless h is non-nil and, when tagged, points at a want.
func (h Handle) check(want reflect.Type) {
	if h.ptr == nil {
		panic(ErrNilHandle)
	}
	if h.tag != nil && h.tag != want {
		panic(&HandleMismatchError{Want: want, Got: h.tag})
	}
}

// at returns the address of a value of type field at offset inside a want.
func (h Handle) at(want, field reflect.Type, offset uint32) unsafe.Pointer {
	h.check(want)
	if uintptr(offset)+field.Size() > want.Size() {
		panic(fmt.Errorf("%w: %d+%d > %d (%s)", ErrOffsetRange, offset, field.Size(), want.Size(), want))
	}
	if uintptr(offset)%uintptr(field.Align()) != 0 {
		panic(fmt.Errorf("%w: %d is not %d-aligned for %s (%s)", ErrOffsetRange, offset, field.Align(), field, want))
	}
	return unsafe.Add(h.ptr, offset)
}

// Deref returns the *T behind h. It panics if h is nil or tagged with another type.
func Deref[T any](h Handle) *T {
	h.check(reflect.TypeFor[T]())
	return (*T)(h.ptr)
}

// FieldGetter returns a trampoline that reads an X at a byte offset inside an owner.
func FieldGetter[X any](owner reflect.Type) func(Handle, uint32) X {
	xt := reflect.TypeFor[X]()
	return func(h Handle, offset uint32) X {
		return *(*X)(h.at(owner, xt, offset))
	}
}

// FieldSetter returns a trampoline that writes an X at a byte offset inside an owner.
func FieldSetter[X any](owner reflect.Type) func(Handle, uint32, X) {
	xt := reflect.TypeFor[X]()
	return func(h Handle, offset uint32, v X) {
		*(*X)(h.at(owner, xt, offset)) = v
	}
}
