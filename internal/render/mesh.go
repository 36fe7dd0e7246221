package render

import (
	"image/color"

	"chosenoffset.com/sightline/internal/core/triangulate"
)

// MaxBatchVertices keeps every index of a batch addressable by uint16.
const MaxBatchVertices = 1<<16 - 1

// Mesh is one DrawTriangles call worth of vertices and indices.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// BuildMeshes converts triangles into solid-colour meshes sampling the
// top-left texel of the source image. Triangles are never split across meshes.
func BuildMeshes(triangles []triangulate.Triangle, clr color.Color) []Mesh {
	if len(triangles) == 0 {
		return nil
	}

	// color.Color.RGBA is already premultiplied
	r, g, b, a := clr.RGBA()
	cr, cg, cb, ca := float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff, float32(a)/0xffff

	perMesh := MaxBatchVertices / 3
	meshes := make([]Mesh, 0, (len(triangles)+perMesh-1)/perMesh)
	for start := 0; start < len(triangles); start += perMesh {
		end := min(start+perMesh, len(triangles))
		batch := triangles[start:end]

		mesh := Mesh{
			Vertices: make([]Vertex, 0, len(batch)*3),
			Indices:  make([]uint16, 0, len(batch)*3),
		}
		for _, tri := range batch {
			for _, p := range tri.Points() {
				mesh.Indices = append(mesh.Indices, uint16(len(mesh.Vertices)))
				mesh.Vertices = append(mesh.Vertices, Vertex{
					DstX:   float32(p.X),
					DstY:   float32(p.Y),
					ColorR: cr,
					ColorG: cg,
					ColorB: cb,
					ColorA: ca,
				})
			}
		}
		meshes = append(meshes, mesh)
	}
	return meshes
}

// FillTriangles draws triangles in a solid colour onto dst. src should be an
// opaque white image; its top-left texel is stretched over every triangle.
func FillTriangles(dst, src Image, triangles []triangulate.Triangle, clr color.Color, opts *DrawTrianglesOptions) {
	for _, mesh := range BuildMeshes(triangles, clr) {
		dst.DrawTriangles(mesh.Vertices, mesh.Indices, src, opts)
	}
}
