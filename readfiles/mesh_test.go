package readfiles

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/interval"
)

func TestMeshRoundTrip(t *testing.T) {
	tm, err := geometry.FromRectilinearShape(3, 2, rand.New(rand.NewPCG(4, 5)))
	require.NoError(t, err)
	tm.Reflect(2)
	require.NoError(t, tm.ResetRestLengths())
	require.NoError(t, tm.InsertEdge([2]uint16{0, 11}, 0.25, 3))
	var buf bytes.Buffer
	require.NoError(t, WriteMesh(&buf, tm))

	back, err := ReadMesh(&buf)
	require.NoError(t, err)
	assert.Equal(t, tm.Vertices.Name(), back.Vertices.Name())
	assert.Equal(t, tm.Vertices.Indices(), back.Vertices.Indices())
	for _, i := range tm.Vertices.Indices() {
		p, _ := tm.Vertices.Get(i)
		q, _ := back.Vertices.Get(i)
		assert.Equal(t, p, q)
	}
	// Windings survive, the reflected cells do not come back in their original orientation
	assert.Equal(t, tm.Topology.Cells(), back.Topology.Cells())
	assert.Equal(t, tm.Topology.Edges(), back.Topology.Edges())
	for _, ei := range tm.Topology.Edges() {
		e, _ := tm.Topology.Edge(ei)
		f, _ := back.Topology.Edge(ei)
		assert.Equal(t, e, f, ei.String())
	}
	{ // Malformed input
		_, err = ReadMesh(strings.NewReader("points: [\n"))
		assert.Error(t, err)
		_, err = ReadMesh(strings.NewReader("start: 4\nend: 2\nradix: 10\n"))
		assert.True(t, errors.Is(err, interval.ErrMalformedInterval))
		_, err = ReadMesh(strings.NewReader("start: 0\nend: 8\nradix: 10\ncells: [[1, 1, 2]]\n"))
		assert.Error(t, err)
	}
}

func TestChunks(t *testing.T) {
	dir := t.TempDir()
	iv, err := interval.New(32, 47, 16)
	require.NoError(t, err)
	va := geometry.NewVertexArray("terrain-east", iv)
	va.InsertPoint(33, r3.Vec{X: 0.5, Y: 0.25, Z: 1})
	va.InsertPoint(46, r3.Vec{X: 0.125})

	path, err := WriteChunk(dir, va)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "terrain-east-c87.yaml"), path)

	back, err := ReadChunk(path, 16)
	require.NoError(t, err)
	assert.Equal(t, va.Name(), back.Name())
	assert.Equal(t, iv, back.Interval())
	assert.Equal(t, []uint16{33, 46}, back.Indices())
	p, _ := back.Get(33)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.25, Z: 1}, p)

	{ // The name alone identifies the interval
		named, err := interval.FromHash(strings.TrimPrefix(filepath.Base(path), "terrain-east-")[:3], 16)
		require.NoError(t, err)
		assert.Equal(t, uint32(32), named.Start)
		assert.Equal(t, uint32(47), named.End)
	}
	{ // Read with the wrong radix, the name decodes to a different interval
		_, err = ReadChunk(path, 36)
		assert.True(t, errors.Is(err, interval.ErrMalformedInterval))
	}
	{ // A renamed file no longer agrees with its body
		moved := filepath.Join(dir, "terrain-east-c78.yaml")
		require.NoError(t, os.Rename(path, moved))
		_, err = ReadChunk(moved, 16)
		assert.True(t, errors.Is(err, interval.ErrMalformedInterval))
	}
	{ // Names without a hash, points outside the interval
		_, err = ReadChunk(filepath.Join(dir, "nohash.yaml"), 16)
		assert.True(t, errors.Is(err, interval.ErrMalformedInterval))
		bad := filepath.Join(dir, "bad-c87.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("prefix: bad\nstart: 32\nend: 47\nradix: 16\npoints:\n- i: 3\n  x: 0\n  y: 0\n  z: 0\n"), 0644))
		_, err = ReadChunk(bad, 16)
		assert.True(t, errors.Is(err, interval.ErrMalformedInterval))
	}
}
