package math

import (
	"math"
	"testing"
)

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I element %d = %f, want %f", i, result[i], m[i])
		}
	}
}

func TestModelMatchesTranslateTimesScale(t *testing.T) {
	pos := Vec3{X: 12, Y: -3, Z: 7}
	want := Translate(pos.X, pos.Y, pos.Z).Mul(Scale(4, 4, 4))
	got := Model(pos, 4)

	if got != want {
		t.Errorf("Model() = %v, want %v", got, want)
	}
}

func TestTransformVec3(t *testing.T) {
	m := Model(Vec3{X: 10, Y: 0, Z: -10}, 2)
	got := m.TransformVec3(Vec3{X: -0.5, Y: 1, Z: 0.5})
	want := Vec3{X: 9, Y: 2, Z: -9}

	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Model(Vec3{X: 3, Y: 4, Z: 5}, 2)
	p := Vec3{X: 1, Y: 2, Z: 3}
	back := m.Inverse().TransformVec3(m.TransformVec3(p))

	if abs(back.X-p.X) > 1e-5 || abs(back.Y-p.Y) > 1e-5 || abs(back.Z-p.Z) > 1e-5 {
		t.Errorf("Inverse round trip = %v, want %v", back, p)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[15] != 0 {
		t.Errorf("Perspective [15] = %f, want 0", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] = %f, want -1", m[11])
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := Vec3{X: 0, Y: 10, Z: 5}
	m := LookAt(eye, Vec3{}, Vec3{X: 0, Y: 1, Z: 0})
	got := m.TransformVec3(eye)

	if got.Length() > 1e-4 {
		t.Errorf("LookAt eye maps to %v, want origin", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
