// Package demo is a small physics binding set that uses every member variant. It
// registers itself as "demo".
package demo

import (
	"math"

	"github.com/Alia5/monobind/bindings"
	"github.com/Alia5/monobind/emitter"
	"github.com/Alia5/monobind/trampoline"
)

// Vec3 crosses the boundary by value.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Counter crosses the boundary by value.
type Counter struct {
	Count int64
	Scale float32
}

// Body is reached from C# through a handle.
type Body struct {
	ID       uint32
	Mass     float32
	Position Vec3
	Velocity Vec3
	Sleeping bool
	name     string
}

func NewBody(id uint32, name string) *Body {
	return &Body{ID: id, Mass: 1, name: name}
}

func (b *Body) Name() string { return b.name }

func init() {
	bindings.Register(bindings.NewSet("demo", "Vector3, Counter and Body physics types", Describe))
}

// Describe emits the demo types.
func Describe(e *emitter.Emitter) error {
	if err := describeVec3(e); err != nil {
		return err
	}
	if err := describeCounter(e); err != nil {
		return err
	}
	return describeBody(e)
}

func describeVec3(e *emitter.Emitter) error {
	if err := emitter.StructHeader[Vec3](e, "Vector3"); err != nil {
		return err
	}
	for _, f := range []struct{ name, field string }{{"x", "X"}, {"y", "Y"}, {"z", "Z"}} {
		if err := emitter.StructField[float32](e, f.name, f.field); err != nil {
			return err
		}
	}
	if err := emitter.StructProperty(e, "magnitude",
		func(v *Vec3) float32 { return v.Length() },
		func(v *Vec3, m float32) {
			l := v.Length()
			if l == 0 {
				return
			}
			k := m / l
			v.X, v.Y, v.Z = v.X*k, v.Y*k, v.Z*k
		},
	); err != nil {
		return err
	}
	if err := emitter.ReadonlyStructProperty(e, "isZero", func(v *Vec3) bool {
		return v.X == 0 && v.Y == 0 && v.Z == 0
	}); err != nil {
		return err
	}
	return e.Footer()
}

func describeCounter(e *emitter.Emitter) error {
	if err := emitter.StructHeader[Counter](e, "Counter"); err != nil {
		return err
	}
	if err := emitter.StructField[int64](e, "count", "Count"); err != nil {
		return err
	}
	if err := emitter.ReadonlyStructField[float32](e, "scale", "Scale"); err != nil {
		return err
	}
	return e.Footer()
}

func describeBody(e *emitter.Emitter) error {
	if err := emitter.ClassHeader[Body](e, "Body"); err != nil {
		return err
	}
	if err := emitter.ReadonlyClassField[uint32](e, "id", "ID"); err != nil {
		return err
	}
	if err := emitter.ClassField[float32](e, "mass", "Mass"); err != nil {
		return err
	}
	if err := emitter.ClassField[Vec3](e, "position", "Position"); err != nil {
		return err
	}
	if err := emitter.ClassField[bool](e, "sleeping", "Sleeping"); err != nil {
		return err
	}
	if err := emitter.ClassProperty(e, "name",
		func(h trampoline.Handle) string { return trampoline.Deref[Body](h).name },
		func(h trampoline.Handle, s string) { trampoline.Deref[Body](h).name = s },
	); err != nil {
		return err
	}
	if err := emitter.ReadonlyClassProperty(e, "speed", func(h trampoline.Handle) float32 {
		return trampoline.Deref[Body](h).Velocity.Length()
	}); err != nil {
		return err
	}
	return e.Footer()
}
