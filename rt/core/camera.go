package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	TwoPi = float32(2 * math.Pi)

	// DefaultMaxPitch keeps the camera half a degree short of straight up/down
	// so cos(pitch) never reaches zero.
	DefaultMaxPitch    = float32(89.5 * math.Pi / 180)
	DefaultSensitivity = float32(0.0025)
)

// Camera is a free-flying first person camera described in spherical
// coordinates. InvPos is the negated world position: the translation that
// brings the camera to the origin.
type Camera struct {
	InvPos       mgl32.Vec3
	Yaw          float32
	Pitch        float32
	MaxPitch     float32
	SensitivityX float32
	SensitivityY float32
}

func NewCamera() *Camera {
	return &Camera{
		MaxPitch:     DefaultMaxPitch,
		SensitivityX: DefaultSensitivity,
		SensitivityY: DefaultSensitivity,
	}
}

// Position returns the camera's world position.
func (c *Camera) Position() mgl32.Vec3 {
	return Scale(c.InvPos, -1)
}

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.InvPos = Scale(p, -1)
}

// Look applies one pointer delta. dx grows to the right and turns the camera
// right; dy grows downwards and tilts the camera down.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw = WrapYaw(c.Yaw + dx*c.SensitivityX)
	c.Pitch = ClampPitch(c.Pitch-dy*c.SensitivityY, c.MaxPitch)
}

// CameraSnapshot is the camera state as read once at the start of a tick.
type CameraSnapshot struct {
	InvPos mgl32.Vec3
	Yaw    float32
	Pitch  float32
}

func (c *Camera) Snapshot() CameraSnapshot {
	return CameraSnapshot{InvPos: c.InvPos, Yaw: c.Yaw, Pitch: c.Pitch}
}

// WrapYaw brings yaw into [-2π, 2π). Values already in range are returned
// unchanged.
func WrapYaw(yaw float32) float32 {
	if yaw >= -TwoPi && yaw < TwoPi {
		return yaw
	}
	w := float32(math.Mod(float64(yaw), 2*math.Pi))
	// float32 rounding of the float64 remainder can land exactly on a bound.
	if w >= TwoPi {
		w -= TwoPi
	} else if w < -TwoPi {
		w += TwoPi
	}
	return w
}

func ClampPitch(pitch, maxPitch float32) float32 {
	if pitch > maxPitch {
		return maxPitch
	}
	if pitch < -maxPitch {
		return -maxPitch
	}
	return pitch
}

// Basis is the camera's orthonormal frame in world space.
type Basis struct {
	Forward mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3
}

// ComputeBasis derives the camera frame from yaw and pitch. Pitch must already
// be clamped so that cos(pitch) > 0.
//
// Up is forward × right expanded by hand. The shortcut relies on right having
// no vertical component; a different parameterisation needs a general cross
// product instead.
func ComputeBasis(yaw, pitch float32) Basis {
	sinYaw, cosYaw := math.Sincos(float64(yaw))
	sinPitch, cosPitch := math.Sincos(float64(pitch))

	forward := mgl32.Vec3{
		float32(cosPitch * sinYaw),
		float32(sinPitch),
		float32(cosPitch * cosYaw),
	}
	right := mgl32.Vec3{
		float32(cosYaw),
		0,
		float32(-sinYaw),
	}
	up := mgl32.Vec3{
		forward[1] * right[2],
		float32(cosPitch),
		-forward[1] * right[0],
	}
	return Basis{Forward: forward, Right: right, Up: up}
}

// ViewMatrix builds the world-to-camera transform. Right, up and forward are
// the rows of the rotation block (the transpose of the camera orientation) and
// column 3 carries the inverse position projected onto each axis.
func (b Basis) ViewMatrix(invPos mgl32.Vec3) mgl32.Mat4 {
	r, u, f := b.Right, b.Up, b.Forward
	return mgl32.Mat4{
		r[0], u[0], f[0], 0,
		r[1], u[1], f[1], 0,
		r[2], u[2], f[2], 0,
		Dot(invPos, r), Dot(invPos, u), Dot(invPos, f), 1,
	}
}

// Movement is the set of movement actions held during a tick.
type Movement struct {
	Forward, Back bool
	Left, Right   bool
	Up, Down      bool
}

func (m Movement) Any() bool {
	return m.Forward || m.Back || m.Left || m.Right || m.Up || m.Down
}

// Move integrates one tick of camera movement. dist is the distance covered
// this tick; the world moves opposite to the camera, hence the inverted signs.
// Up and down are world-vertical regardless of pitch.
func (c *Camera) Move(b Basis, dist float32, m Movement) {
	if dist == 0 || !m.Any() {
		return
	}
	scaledForward := Scale(b.Forward, dist)
	scaledRight := Scale(b.Right, dist)

	if m.Forward {
		Subtract(&c.InvPos, scaledForward)
	}
	if m.Left {
		Add(&c.InvPos, scaledRight)
	}
	if m.Back {
		Add(&c.InvPos, scaledForward)
	}
	if m.Right {
		Subtract(&c.InvPos, scaledRight)
	}
	if m.Up {
		c.InvPos[1] -= dist
	}
	if m.Down {
		c.InvPos[1] += dist
	}
}
