package fp

// Mat3 is a row-major 3x3 matrix in Q32.32 fixed point
// Primarily used for world-space inverse inertia tensors
type Mat3 struct {
	XX, XY, XZ Scalar
	YX, YY, YZ Scalar
	ZX, ZY, ZZ Scalar
}

func M3Identity() Mat3 {
	return Mat3{XX: One, YY: One, ZZ: One}
}

// M3Diag builds a diagonal matrix, e.g. the inverse inertia of an
// axis-aligned box or sphere
func M3Diag(x, y, z Scalar) Mat3 {
	return Mat3{XX: x, YY: y, ZZ: z}
}

func M3Scale(m Mat3, s Scalar) Mat3 {
	return Mat3{
		Mul(m.XX, s), Mul(m.XY, s), Mul(m.XZ, s),
		Mul(m.YX, s), Mul(m.YY, s), Mul(m.YZ, s),
		Mul(m.ZX, s), Mul(m.ZY, s), Mul(m.ZZ, s),
	}
}

// M3MulV3 returns m * v
func M3MulV3(m Mat3, v Vec3) Vec3 {
	return Vec3{
		X: Mul(m.XX, v.X) + Mul(m.XY, v.Y) + Mul(m.XZ, v.Z),
		Y: Mul(m.YX, v.X) + Mul(m.YY, v.Y) + Mul(m.YZ, v.Z),
		Z: Mul(m.ZX, v.X) + Mul(m.ZY, v.Y) + Mul(m.ZZ, v.Z),
	}
}

func M3Add(a, b Mat3) Mat3 {
	return Mat3{
		a.XX + b.XX, a.XY + b.XY, a.XZ + b.XZ,
		a.YX + b.YX, a.YY + b.YY, a.YZ + b.YZ,
		a.ZX + b.ZX, a.ZY + b.ZY, a.ZZ + b.ZZ,
	}
}
