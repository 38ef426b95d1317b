package emitter

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Alia5/monobind/trampoline"
)

var (
	ErrBlockOpen      = errors.New("emitter: a type block is already open")
	ErrNoBlock        = errors.New("emitter: no type block is open")
	ErrWrongBlockKind = errors.New("emitter: member does not belong in this kind of block")
	ErrWrongOwner     = errors.New("emitter: accessor owner is not the open type")
	ErrEmptyName      = errors.New("emitter: empty name")
	ErrNilAccessor    = errors.New("emitter: nil accessor")
	ErrTypeRenamed    = errors.New("emitter: type is already registered under another name")
	ErrDuplicateBlock = errors.New("emitter: type or name already has a block")
	ErrCommitted      = trampoline.ErrCommitted
)

// FieldTypeError reports a field whose Go type differs from the type the caller
// asked to expose it as.
type FieldTypeError struct {
	Owner reflect.Type
	Field string
	Want  reflect.Type
	Got   reflect.Type
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("emitter: field %s.%s has type %s, exposed as %s", e.Owner, e.Field, e.Got, e.Want)
}

// WriteError wraps a failure of the output sink. It ends the session: the text
// written so far no longer matches the collected trampolines.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("emitter: write output: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
