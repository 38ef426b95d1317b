package wasmhost

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/tetratelabs/wazero/api"

	"github.com/Alia5/monobind/layout"
	"github.com/Alia5/monobind/trampoline"
)

// ErrUnsupported is matched by every *UnsupportedError.
var ErrUnsupported = errors.New("wasmhost: type cannot cross the wasm boundary")

// UnsupportedError reports a trampoline parameter or result without a wasm lowering.
type UnsupportedError struct {
	Name string
	Type reflect.Type
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("wasmhost: trampoline %q: type %s cannot cross the wasm boundary", e.Name, e.Type)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

var handleType = reflect.TypeFor[trampoline.Handle]()

// param converts one stack slot into a Go argument. The returned func, when not
// nil, copies the argument back into guest memory after the call.
type param struct {
	vt     api.ValueType
	decode func(mod api.Module, slot uint64) (reflect.Value, func())
}

type result struct {
	vt     api.ValueType
	encode func(v reflect.Value) uint64
}

func (r *Registrar) lowerParam(t reflect.Type) (param, bool) {
	switch t.Kind() {
	case reflect.Bool:
		return param{api.ValueTypeI32, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetBool(api.DecodeU32(s) != 0)
			return v, nil
		}}, true
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return param{api.ValueTypeI32, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetInt(int64(api.DecodeI32(s)))
			return v, nil
		}}, true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return param{api.ValueTypeI32, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetUint(uint64(api.DecodeU32(s)))
			return v, nil
		}}, true
	case reflect.Int64, reflect.Int:
		return param{api.ValueTypeI64, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetInt(int64(s))
			return v, nil
		}}, true
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return param{api.ValueTypeI64, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetUint(s)
			return v, nil
		}}, true
	case reflect.Float32:
		return param{api.ValueTypeF32, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetFloat(float64(api.DecodeF32(s)))
			return v, nil
		}}, true
	case reflect.Float64:
		return param{api.ValueTypeF64, func(_ api.Module, s uint64) (reflect.Value, func()) {
			v := reflect.New(t).Elem()
			v.SetFloat(api.DecodeF64(s))
			return v, nil
		}}, true
	case reflect.Struct:
		if t != handleType {
			return param{}, false
		}
		return param{api.ValueTypeI64, func(_ api.Module, s uint64) (reflect.Value, func()) {
			h, ok := r.handles.Get(s)
			if !ok {
				panic(fmt.Errorf("wasmhost: unknown handle id %d", s))
			}
			return reflect.ValueOf(h), nil
		}}, true
	case reflect.Pointer:
		elem := t.Elem()
		if elem.Kind() != reflect.Struct || !layout.PointerFree(elem) {
			return param{}, false
		}
		return param{api.ValueTypeI32, func(mod api.Module, s uint64) (reflect.Value, func()) {
			return copyIn(mod, elem, api.DecodeU32(s))
		}}, true
	default:
		return param{}, false
	}
}

// copyIn copies a struct out of guest memory at ptr and returns a pointer to the
// copy plus a func that writes the copy back.
func copyIn(mod api.Module, elem reflect.Type, ptr uint32) (reflect.Value, func()) {
	mem := mod.Memory()
	if mem == nil {
		panic(errors.New("wasmhost: caller has no memory"))
	}
	size := uint32(elem.Size())
	src, ok := mem.Read(ptr, size)
	if !ok {
		panic(fmt.Errorf("wasmhost: %s at %#x is out of guest memory", elem, ptr))
	}
	v := reflect.New(elem)
	dst := unsafe.Slice((*byte)(v.UnsafePointer()), size)
	copy(dst, src)
	return v, func() {
		if !mem.Write(ptr, dst) {
			panic(fmt.Errorf("wasmhost: %s at %#x is out of guest memory", elem, ptr))
		}
	}
}

func (r *Registrar) lowerResult(t reflect.Type) (result, bool) {
	switch t.Kind() {
	case reflect.Bool:
		return result{api.ValueTypeI32, func(v reflect.Value) uint64 {
			if v.Bool() {
				return 1
			}
			return 0
		}}, true
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return result{api.ValueTypeI32, func(v reflect.Value) uint64 {
			return api.EncodeI32(int32(v.Int()))
		}}, true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return result{api.ValueTypeI32, func(v reflect.Value) uint64 {
			return api.EncodeU32(uint32(v.Uint()))
		}}, true
	case reflect.Int64, reflect.Int:
		return result{api.ValueTypeI64, func(v reflect.Value) uint64 {
			return api.EncodeI64(v.Int())
		}}, true
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return result{api.ValueTypeI64, func(v reflect.Value) uint64 {
			return v.Uint()
		}}, true
	case reflect.Float32:
		return result{api.ValueTypeF32, func(v reflect.Value) uint64 {
			return api.EncodeF32(float32(v.Float()))
		}}, true
	case reflect.Float64:
		return result{api.ValueTypeF64, func(v reflect.Value) uint64 {
			return api.EncodeF64(v.Float())
		}}, true
	case reflect.Struct:
		if t != handleType {
			return result{}, false
		}
		return result{api.ValueTypeI64, func(v reflect.Value) uint64 {
			return r.handles.Insert(v.Interface().(trampoline.Handle))
		}}, true
	default:
		return result{}, false
	}
}
