package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeMesh(t *testing.T) {
	vertices := CubeVertices()
	indices := CubeIndices()
	require.Len(t, vertices, 24)
	require.Len(t, indices, 36)

	for _, i := range indices {
		assert.Less(t, int(i), len(vertices))
	}
	for i, v := range vertices {
		n := mgl32.Vec3(v.Normal)
		assert.Equal(t, float32(1), mgl32.Vec3(v.Pos).Dot(n), "vertex %d lies on its face", i)
	}
}

func TestCubeMesh_Winding(t *testing.T) {
	vertices := CubeVertices()
	indices := CubeIndices()

	// Viewed from outside, with y up and z into the screen, every triangle
	// winds counter-clockwise, so its right-handed normal points inward.
	for tri := 0; tri < len(indices); tri += 3 {
		p0 := mgl32.Vec3(vertices[indices[tri]].Pos)
		p1 := mgl32.Vec3(vertices[indices[tri+1]].Pos)
		p2 := mgl32.Vec3(vertices[indices[tri+2]].Pos)
		n := mgl32.Vec3(vertices[indices[tri]].Normal)

		assert.Less(t, p1.Sub(p0).Cross(p2.Sub(p0)).Dot(n), float32(0), "triangle %d", tri/3)
	}
}
