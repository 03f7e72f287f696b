package renderer

import "github.com/megakode/wallrus/graphics"

// quadVertices covers clip space with two triangles.
var quadVertices = []float32{
	-1.0, -1.0, 1.0, -1.0, 1.0, 1.0,
	-1.0, -1.0, 1.0, 1.0, -1.0, 1.0,
}

const quadVertexCount = 6

// quad is the fullscreen mesh shared by the pattern pass and every
// post-process pass.
type quad struct {
	dev      graphics.Device
	vao, vbo uint32
}

func newQuad(dev graphics.Device) *quad {
	vao, vbo := dev.NewQuad(quadVertices)
	return &quad{dev: dev, vao: vao, vbo: vbo}
}

func (q *quad) draw() {
	q.dev.DrawTriangles(q.vao, quadVertexCount)
}

func (q *quad) destroy() {
	if q.vao == 0 {
		return
	}
	q.dev.DeleteQuad(q.vao, q.vbo)
	q.vao, q.vbo = 0, 0
}
