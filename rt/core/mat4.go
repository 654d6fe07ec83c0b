package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Axis names one of the three local axes of a model matrix.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", uint8(a))
	}
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("unknown axis %q", s)
	}
}

// UnmarshalText lets config files spell axes as "x", "y" or "z".
func (a *Axis) UnmarshalText(text []byte) error {
	parsed, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Translation returns an identity matrix whose column 3 is (x, y, z, 1).
func Translation(x, y, z float32) mgl32.Mat4 {
	return mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// RotateLocal right-multiplies m by a rotation of angle radians about the
// given local axis, so the object spins about its own axis rather than the
// world's. The axis column and the translation column are left untouched.
func RotateLocal(m *mgl32.Mat4, angle float32, axis Axis) {
	switch axis {
	case AxisX:
		RotateX(m, angle)
	case AxisY:
		RotateY(m, angle)
	case AxisZ:
		RotateZ(m, angle)
	}
}

// RotateX recombines columns 1 and 2.
func RotateX(m *mgl32.Mat4, angle float32) {
	c, s := sincos(angle)
	for r := 0; r < 4; r++ {
		p, q := m[4+r], m[8+r]
		m[4+r] = p*c + q*s
		m[8+r] = q*c - p*s
	}
}

// RotateY recombines columns 0 and 2 with the transposed sign pattern.
func RotateY(m *mgl32.Mat4, angle float32) {
	c, s := sincos(angle)
	for r := 0; r < 4; r++ {
		p, q := m[r], m[8+r]
		m[r] = p*c - q*s
		m[8+r] = q*c + p*s
	}
}

// RotateZ recombines columns 0 and 1.
func RotateZ(m *mgl32.Mat4, angle float32) {
	c, s := sincos(angle)
	for r := 0; r < 4; r++ {
		p, q := m[r], m[4+r]
		m[r] = p*c + q*s
		m[4+r] = q*c - p*s
	}
}

func sincos(angle float32) (c, s float32) {
	sin, cos := math.Sincos(float64(angle))
	return float32(cos), float32(sin)
}
