package fp

// Vec3 is a 3D vector in Q32.32 fixed point
type Vec3 struct {
	X, Y, Z Scalar
}

func V3(x, y, z Scalar) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func V3Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3Sub(a, b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3Scale(v Vec3, s Scalar) Vec3 {
	return Vec3{Mul(v.X, s), Mul(v.Y, s), Mul(v.Z, s)}
}

func V3Neg(v Vec3) Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func V3Dot(a, b Vec3) Scalar {
	return Mul(a.X, b.X) + Mul(a.Y, b.Y) + Mul(a.Z, b.Z)
}

func V3Cross(a, b Vec3) Vec3 {
	return Vec3{
		X: Mul(a.Y, b.Z) - Mul(a.Z, b.Y),
		Y: Mul(a.Z, b.X) - Mul(a.X, b.Z),
		Z: Mul(a.X, b.Y) - Mul(a.Y, b.X),
	}
}

func V3MagSq(v Vec3) Scalar {
	return Mul(v.X, v.X) + Mul(v.Y, v.Y) + Mul(v.Z, v.Z)
}

func V3Mag(v Vec3) Scalar {
	return Sqrt(V3MagSq(v))
}

func V3IsZero(v Vec3) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// V3Normalize normalizes through the integer Sqrt/Div path so the result
// is reproducible across platforms. A zero vector normalizes to zero
func V3Normalize(v Vec3) Vec3 {
	mag := V3Mag(v)
	if mag == 0 {
		return Vec3{}
	}
	return Vec3{Div(v.X, mag), Div(v.Y, mag), Div(v.Z, mag)}
}

// V3ClampMagnitude limits vector magnitude
func V3ClampMagnitude(v Vec3, maxMag Scalar) Vec3 {
	magSq := V3MagSq(v)
	maxMagSq := Mul(maxMag, maxMag)
	if magSq <= maxMagSq {
		return v
	}
	return V3Scale(V3Normalize(v), maxMag)
}

// V3Distance returns the distance between two points
func V3Distance(a, b Vec3) Scalar {
	return V3Mag(V3Sub(a, b))
}
