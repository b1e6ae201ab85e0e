package fp

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Boundary conversions for host telemetry, debug display, and scene setup.
// Lossy by design; the solver itself never touches these.

func ToMgl64(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{ToFloat(v.X), ToFloat(v.Y), ToFloat(v.Z)}
}

func ToMgl32(v Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(ToFloat(v.X)), float32(ToFloat(v.Y)), float32(ToFloat(v.Z))}
}

func FromMgl64(v mgl64.Vec3) Vec3 {
	return Vec3{FromFloat(v.X()), FromFloat(v.Y()), FromFloat(v.Z())}
}

func FromMgl32(v mgl32.Vec3) Vec3 {
	return Vec3{FromFloat(float64(v.X())), FromFloat(float64(v.Y())), FromFloat(float64(v.Z()))}
}
