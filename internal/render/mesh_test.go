package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/triangulate"
)

type drawCall struct {
	vertices []Vertex
	indices  []uint16
	opts     *DrawTrianglesOptions
}

type recordingImage struct {
	calls []drawCall
}

func (r *recordingImage) Bounds() image.Rectangle            { return image.Rect(0, 0, 1, 1) }
func (r *recordingImage) Size() (int, int)                   { return 1, 1 }
func (r *recordingImage) Fill(color.Color)                   {}
func (r *recordingImage) Clear()                             {}
func (r *recordingImage) DrawImage(Image, *DrawImageOptions) {}
func (r *recordingImage) Dispose()                           {}
func (r *recordingImage) DrawTriangles(v []Vertex, i []uint16, _ Image, o *DrawTrianglesOptions) {
	r.calls = append(r.calls, drawCall{vertices: v, indices: i, opts: o})
}

func makeTriangles(n int) []triangulate.Triangle {
	tris := make([]triangulate.Triangle, n)
	for i := range tris {
		x := float64(i)
		tris[i] = triangulate.Triangle{A: geom.Pt(x, 0), B: geom.Pt(x+1, 0), C: geom.Pt(x, 1)}
	}
	return tris
}

func TestBuildMeshesEmpty(t *testing.T) {
	assert.Nil(t, BuildMeshes(nil, color.White))
}

func TestBuildMeshesPremultipliesColour(t *testing.T) {
	meshes := BuildMeshes(makeTriangles(2), color.NRGBA{255, 255, 255, 51})
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	assert.Len(t, mesh.Vertices, 6)
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, mesh.Indices)

	v := mesh.Vertices[4]
	assert.Equal(t, float32(2), v.DstX)
	assert.Equal(t, float32(0), v.DstY)
	assert.Zero(t, v.SrcX)
	assert.InDelta(t, 0.2, v.ColorR, 1e-6)
	assert.InDelta(t, 0.2, v.ColorA, 1e-6)
}

func TestBuildMeshesSplitsAtIndexLimit(t *testing.T) {
	perMesh := MaxBatchVertices / 3
	meshes := BuildMeshes(makeTriangles(perMesh+5), color.White)
	require.Len(t, meshes, 2)

	assert.Len(t, meshes[0].Vertices, perMesh*3)
	assert.Len(t, meshes[1].Vertices, 15)
	for _, mesh := range meshes {
		for _, idx := range mesh.Indices {
			assert.Less(t, int(idx), len(mesh.Vertices))
		}
	}
}

func TestFillTrianglesForwardsOptions(t *testing.T) {
	dst := &recordingImage{}
	opts := &DrawTrianglesOptions{Blend: BlendMultiply}

	FillTriangles(dst, &recordingImage{}, makeTriangles(3), color.White, opts)

	require.Len(t, dst.calls, 1)
	assert.Len(t, dst.calls[0].vertices, 9)
	assert.Same(t, opts, dst.calls[0].opts)
}

func TestBlendString(t *testing.T) {
	assert.Equal(t, "source-over", BlendSourceOver.String())
	assert.Equal(t, "multiply", BlendMultiply.String())
	assert.Equal(t, "unknown", Blend(42).String())
}
