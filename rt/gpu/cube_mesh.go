package gpu

// CubeVertex matches VertexInput in cube.wgsl.
type CubeVertex struct {
	Pos    [3]float32
	UV     [2]float32
	Normal [3]float32
}

// Unit cube spanning [-1, 1] on every axis, four vertices per face so each
// face gets its own normal and texture coordinates. Front faces wind
// counter-clockwise.
var cubePositions = [24][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}, // front (-z)
	{-1, -1, 1}, {-1, 1, 1}, {1, 1, 1}, {1, -1, 1}, // back (+z)
	{-1, 1, 1}, {-1, 1, -1}, {1, 1, -1}, {1, 1, 1}, // top
	{-1, -1, 1}, {1, -1, 1}, {1, -1, -1}, {-1, -1, -1}, // bottom
	{1, -1, 1}, {1, 1, 1}, {1, 1, -1}, {1, -1, -1}, // right
	{-1, -1, 1}, {-1, -1, -1}, {-1, 1, -1}, {-1, 1, 1}, // left
}

var cubeUVs = [24][2]float32{
	{0, 1}, {1, 1}, {1, 0}, {0, 0},
	{1, 1}, {1, 0}, {0, 0}, {0, 1},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 1}, {1, 1}, {1, 0}, {0, 0},
	{1, 1}, {1, 0}, {0, 0}, {0, 1},
	{0, 1}, {1, 1}, {1, 0}, {0, 0},
}

var cubeFaceNormals = [6][3]float32{
	{0, 0, -1},
	{0, 0, 1},
	{0, 1, 0},
	{0, -1, 0},
	{1, 0, 0},
	{-1, 0, 0},
}

// CubeVertices returns the 24 vertices of the unit cube.
func CubeVertices() []CubeVertex {
	vertices := make([]CubeVertex, len(cubePositions))
	for i := range vertices {
		vertices[i] = CubeVertex{
			Pos:    cubePositions[i],
			UV:     cubeUVs[i],
			Normal: cubeFaceNormals[i/4],
		}
	}
	return vertices
}

// CubeIndices returns two triangles per face, 36 indices in all.
func CubeIndices() []uint16 {
	indices := make([]uint16, 0, 36)
	for face := uint16(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return indices
}
