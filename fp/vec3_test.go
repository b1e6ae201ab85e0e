package fp

import (
	"math"
	"testing"
)

func approxEq(t *testing.T, got Scalar, want float64, tol float64, name string) {
	t.Helper()
	if math.Abs(ToFloat(got)-want) > tol {
		t.Errorf("%s = %v, want %v", name, ToFloat(got), want)
	}
}

func TestV3DotCross(t *testing.T) {
	x := V3(One, 0, 0)
	y := V3(0, One, 0)
	z := V3Cross(x, y)
	if z.X != 0 || z.Y != 0 || z.Z != One {
		t.Errorf("Expected x cross y = z, got %+v", z)
	}
	if got := V3Dot(x, y); got != 0 {
		t.Errorf("Expected orthogonal dot 0, got %d", got)
	}
	approxEq(t, V3Dot(V3(FromInt(2), FromInt(3), 0), V3(FromInt(4), FromInt(5), 0)), 23, 1e-6, "dot")
}

func TestV3Normalize(t *testing.T) {
	v := V3Normalize(V3(FromInt(3), FromInt(4), 0))
	approxEq(t, v.X, 0.6, 1e-4, "normalized X")
	approxEq(t, v.Y, 0.8, 1e-4, "normalized Y")
	approxEq(t, V3Mag(v), 1, 1e-4, "normalized magnitude")

	zero := V3Normalize(Vec3{})
	if !V3IsZero(zero) {
		t.Errorf("Expected zero vector to normalize to zero, got %+v", zero)
	}
}

func TestV3NormalizeIsDeterministic(t *testing.T) {
	v := V3(FromFloat(1.7), FromFloat(-2.3), FromFloat(0.9))
	first := V3Normalize(v)
	for i := 0; i < 5; i++ {
		if got := V3Normalize(v); got != first {
			t.Fatalf("Normalize diverged: got %+v, want %+v", got, first)
		}
	}
}

func TestV3ClampMagnitude(t *testing.T) {
	v := V3ClampMagnitude(V3(FromInt(30), FromInt(40), 0), FromInt(5))
	approxEq(t, V3Mag(v), 5, 1e-3, "clamped magnitude")

	small := V3(One, 0, 0)
	if got := V3ClampMagnitude(small, FromInt(5)); got != small {
		t.Errorf("Expected unclamped vector unchanged, got %+v", got)
	}
}

func TestM3MulV3(t *testing.T) {
	m := M3Diag(FromInt(2), FromInt(3), FromInt(4))
	v := M3MulV3(m, V3(One, One, One))
	approxEq(t, v.X, 2, 1e-6, "diag X")
	approxEq(t, v.Y, 3, 1e-6, "diag Y")
	approxEq(t, v.Z, 4, 1e-6, "diag Z")

	id := M3Identity()
	in := V3(FromFloat(1.5), FromFloat(-2.5), FromFloat(3.5))
	if got := M3MulV3(id, in); got != in {
		t.Errorf("Expected identity multiply unchanged, got %+v", got)
	}
}
