package emitter

import (
	"math"
	"reflect"

	"github.com/Alia5/monobind/layout"
	"github.com/Alia5/monobind/trampoline"
)

// resolveField resolves X's C# name first, then the field path inside owner, and
// checks that the field really holds an X.
func (e *Emitter) resolveField(owner reflect.Type, field string, x reflect.Type) (string, layout.Field, error) {
	typeName, err := e.types.Resolve(x)
	if err != nil {
		return "", layout.Field{}, err
	}
	f, err := layout.Resolve(owner, field)
	if err != nil {
		return "", layout.Field{}, err
	}
	if f.Type != x {
		return "", layout.Field{}, &FieldTypeError{Owner: owner, Field: field, Want: x, Got: f.Type}
	}
	if f.Offset > math.MaxUint32 {
		return "", layout.Field{}, trampoline.ErrOffsetRange
	}
	return typeName, f, nil
}

// StructField exposes the Go field at path field of the open struct as a public
// C# field named name at the same offset.
func StructField[X any](e *Emitter, name, field string) error {
	x := reflect.TypeFor[X]()
	return e.emit(MemberStructField, KindStruct, name, func(b *Block) (memberPlan, error) {
		typeName, f, err := e.resolveField(b.GoType, field, x)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{member: Member{Type: typeName, Field: field, Offset: int64(f.Offset)}}, nil
	})
}

// ReadonlyStructField exposes a field through a private C# field and a public
// read-only accessor. Nothing stops native code from writing it.
func ReadonlyStructField[X any](e *Emitter, name, field string) error {
	x := reflect.TypeFor[X]()
	return e.emit(MemberReadonlyStructField, KindStruct, name, func(b *Block) (memberPlan, error) {
		typeName, f, err := e.resolveField(b.GoType, field, x)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{member: Member{Type: typeName, Field: field, Offset: int64(f.Offset)}}, nil
	})
}

// ClassField exposes a field of the open class's pointee as a C# property backed
// by get_/set_ trampolines that read and write at the field's offset.
func ClassField[X any](e *Emitter, name, field string) error {
	x := reflect.TypeFor[X]()
	return e.emit(MemberClassField, KindClass, name, func(b *Block) (memberPlan, error) {
		typeName, f, err := e.resolveField(b.GoType, field, x)
		if err != nil {
			return memberPlan{}, err
		}
		getter, setter := trampoline.Getter(name), trampoline.Setter(name)
		ts, err := newTrampolines(
			getter, trampoline.FieldGetter[X](b.GoType),
			setter, trampoline.FieldSetter[X](b.GoType),
		)
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member: Member{
				Type:   typeName,
				Field:  field,
				Offset: int64(f.Offset),
				Getter: getter,
				Setter: setter,
			},
			trampolines: ts,
		}, nil
	})
}

// ReadonlyClassField is ClassField without the setter.
func ReadonlyClassField[X any](e *Emitter, name, field string) error {
	x := reflect.TypeFor[X]()
	return e.emit(MemberReadonlyClassField, KindClass, name, func(b *Block) (memberPlan, error) {
		typeName, f, err := e.resolveField(b.GoType, field, x)
		if err != nil {
			return memberPlan{}, err
		}
		getter := trampoline.Getter(name)
		ts, err := newTrampolines(getter, trampoline.FieldGetter[X](b.GoType))
		if err != nil {
			return memberPlan{}, err
		}
		return memberPlan{
			member: Member{
				Type:   typeName,
				Field:  field,
				Offset: int64(f.Offset),
				Getter: getter,
			},
			trampolines: ts,
		}, nil
	})
}
