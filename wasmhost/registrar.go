// Package wasmhost commits trampolines into a wazero host module, so that a
// WebAssembly guest can import them by the same names the generated C# uses.
//
// Parameters and results are lowered to wasm value types: integers of up to 32
// bits and bool become i32, 64-bit and platform-sized integers become i64, floats
// keep their width, handles become i64 ids from a HandleTable, and pointers to
// pointer-free structs become i32 guest addresses that are copied in and written
// back around the call. Anything else is rejected, or skipped when lenient.
package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/Alia5/monobind/trampoline"
)

// DefaultModuleName is the import module name guests use.
const DefaultModuleName = "monobind"

var ErrNoFunctions = errors.New("wasmhost: no trampolines to instantiate")

type hostFunc struct {
	name    string
	fn      api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
}

// Registrar implements trampoline.Registrar on top of a wazero host module.
type Registrar struct {
	moduleName string
	lenient    bool
	handles    *HandleTable

	funcs   []hostFunc
	names   map[string]bool
	skipped []string
}

type Option func(*Registrar)

func WithModuleName(name string) Option {
	return func(r *Registrar) {
		if name != "" {
			r.moduleName = name
		}
	}
}

// WithLenient makes Register skip trampolines with unsupported types instead of
// failing.
func WithLenient(lenient bool) Option {
	return func(r *Registrar) { r.lenient = lenient }
}

func WithHandleTable(t *HandleTable) Option {
	return func(r *Registrar) {
		if t != nil {
			r.handles = t
		}
	}
}

func New(opts ...Option) *Registrar {
	r := &Registrar{
		moduleName: DefaultModuleName,
		handles:    NewHandleTable(),
		names:      make(map[string]bool),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registrar) ModuleName() string { return r.moduleName }

func (r *Registrar) Handles() *HandleTable { return r.handles }

// Skipped lists trampolines dropped in lenient mode.
func (r *Registrar) Skipped() []string { return append([]string(nil), r.skipped...) }

// Len returns the number of lowered trampolines.
func (r *Registrar) Len() int { return len(r.funcs) }

func (r *Registrar) Register(t trampoline.Trampoline) error {
	if t.Name == "" {
		return trampoline.ErrEmptyName
	}
	if r.names[t.Name] {
		return &trampoline.DuplicateNameError{Name: t.Name}
	}

	hf, err := r.lower(t)
	if err != nil {
		if r.lenient && errors.Is(err, ErrUnsupported) {
			Logger().Warn("skipping trampoline",
				zap.String("name", t.Name),
				zap.String("signature", t.Sig.String()),
				zap.Error(err))
			r.names[t.Name] = true
			r.skipped = append(r.skipped, t.Name)
			return nil
		}
		return err
	}

	r.names[t.Name] = true
	r.funcs = append(r.funcs, hf)
	Logger().Debug("lowered trampoline",
		zap.String("name", t.Name),
		zap.String("signature", t.Sig.String()),
		zap.Int("params", len(hf.params)),
		zap.Int("results", len(hf.results)))
	return nil
}

func (r *Registrar) lower(t trampoline.Trampoline) (hostFunc, error) {
	params := make([]param, len(t.Sig.Params))
	for i, pt := range t.Sig.Params {
		p, ok := r.lowerParam(pt)
		if !ok {
			return hostFunc{}, &UnsupportedError{Name: t.Name, Type: pt}
		}
		params[i] = p
	}
	results := make([]result, len(t.Sig.Results))
	for i, rt := range t.Sig.Results {
		res, ok := r.lowerResult(rt)
		if !ok {
			return hostFunc{}, &UnsupportedError{Name: t.Name, Type: rt}
		}
		results[i] = res
	}

	fv := reflect.ValueOf(t.Fn)
	fn := func(ctx context.Context, mod api.Module, stack []uint64) {
		args := make([]reflect.Value, len(params))
		var writeBacks []func()
		for i, p := range params {
			v, wb := p.decode(mod, stack[i])
			args[i] = v
			if wb != nil {
				writeBacks = append(writeBacks, wb)
			}
		}
		outs := fv.Call(args)
		for _, wb := range writeBacks {
			wb()
		}
		for i, res := range results {
			stack[i] = res.encode(outs[i])
		}
	}

	hf := hostFunc{name: t.Name, fn: api.GoModuleFunc(fn)}
	for _, p := range params {
		hf.params = append(hf.params, p.vt)
	}
	for _, res := range results {
		hf.results = append(hf.results, res.vt)
	}
	return hf, nil
}

// Instantiate builds the host module in rt and exports every lowered trampoline
// under its own name.
func (r *Registrar) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	if len(r.funcs) == 0 {
		return nil, ErrNoFunctions
	}
	builder := rt.NewHostModuleBuilder(r.moduleName)
	for _, f := range r.funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			WithName(f.name).
			Export(f.name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate host module %q: %w", r.moduleName, err)
	}
	Logger().Info("instantiated host module",
		zap.String("module", r.moduleName),
		zap.Int("functions", len(r.funcs)),
		zap.Int("skipped", len(r.skipped)))
	return mod, nil
}
