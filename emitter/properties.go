package emitter

import (
	"fmt"
	"reflect"

	"github.com/Alia5/monobind/trampoline"
)

// ClassProperty exposes a computed value V of the open class through get and set.
// V needs no backing field; only its registered C# name matters.
func ClassProperty[V any](e *Emitter, name string, get func(trampoline.Handle) V, set func(trampoline.Handle, V)) error {
	return e.emit(MemberClassProperty, KindClass, name, func(b *Block) (memberPlan, error) {
		if get == nil || set == nil {
			return memberPlan{}, ErrNilAccessor
		}
		typeName, err := e.types.Resolve(reflect.TypeFor[V]())
		if err != nil {
			return memberPlan{}, err
		}
		getter, setter := trampoline.Getter(name), trampoline.Setter(name)
		ts, err := newTrampolines(getter, get, setter, set)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member:      Member{Type: typeName, Offset: -1, Getter: getter, Setter: setter},
			trampolines: ts,
		}, nil
	})
}

// ReadonlyClassProperty is ClassProperty without a setter.
func ReadonlyClassProperty[V any](e *Emitter, name string, get func(trampoline.Handle) V) error {
	return e.emit(MemberReadonlyClassProperty, KindClass, name, func(b *Block) (memberPlan, error) {
		if get == nil {
			return memberPlan{}, ErrNilAccessor
		}
		typeName, err := e.types.Resolve(reflect.TypeFor[V]())
		if err != nil {
			return memberPlan{}, err
		}
		getter := trampoline.Getter(name)
		ts, err := newTrampolines(getter, get)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member:      Member{Type: typeName, Offset: -1, Getter: getter},
			trampolines: ts,
		}, nil
	})
}

// structOwner checks that T is the open struct and returns its C# name.
func (e *Emitter) structOwner(b *Block, t reflect.Type) (string, error) {
	if t != b.GoType {
		return "", fmt.Errorf("%w: %s is not %s", ErrWrongOwner, t, b.GoType)
	}
	return e.types.Resolve(t)
}

// StructProperty exposes a computed value of the open struct. Struct values cross
// the boundary by copy, so the accessors receive the caller's own storage.
func StructProperty[T, V any](e *Emitter, name string, get func(*T) V, set func(*T, V)) error {
	return e.emit(MemberStructProperty, KindStruct, name, func(b *Block) (memberPlan, error) {
		if get == nil || set == nil {
			return memberPlan{}, ErrNilAccessor
		}
		typeName, err := e.types.Resolve(reflect.TypeFor[V]())
		if err != nil {
			return memberPlan{}, err
		}
		owner, err := e.structOwner(b, reflect.TypeFor[T]())
		if err != nil {
			return memberPlan{}, err
		}
		getter, setter := trampoline.Getter(name), trampoline.Setter(name)
		ts, err := newTrampolines(getter, get, setter, set)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member:      Member{Type: typeName, Offset: -1, Getter: getter, Setter: setter},
			owner:       owner,
			trampolines: ts,
		}, nil
	})
}

// ReadonlyStructProperty is StructProperty without a setter.
func ReadonlyStructProperty[T, V any](e *Emitter, name string, get func(*T) V) error {
	return e.emit(MemberReadonlyStructProperty, KindStruct, name, func(b *Block) (memberPlan, error) {
		if get == nil {
			return memberPlan{}, ErrNilAccessor
		}
		typeName, err := e.types.Resolve(reflect.TypeFor[V]())
		if err != nil {
			return memberPlan{}, err
		}
		owner, err := e.structOwner(b, reflect.TypeFor[T]())
		if err != nil {
			return memberPlan{}, err
		}
		getter := trampoline.Getter(name)
		ts, err := newTrampolines(getter, get)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member:      Member{Type: typeName, Offset: -1, Getter: getter},
			owner:       owner,
			trampolines: ts,
		}, nil
	})
}
