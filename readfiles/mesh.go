package readfiles

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/trimesh/geometry"
	"github.com/notargets/trimesh/interval"
)

const ChunkExtension = ".yaml"

// ghodss/yaml converts to JSON first, so field names come from json tags
type pointRecord struct {
	Index uint16  `json:"i"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

type edgeRecord struct {
	Vertices       [2]uint16 `json:"v"`
	RestLength     float64   `json:"rest"`
	SpringConstant float64   `json:"k"`
}

type meshFile struct {
	Prefix string        `json:"prefix"`
	Start  uint32        `json:"start"`
	End    uint32        `json:"end"`
	Radix  int           `json:"radix"`
	Points []pointRecord `json:"points"`
	Edges  []edgeRecord  `json:"edges,omitempty"`
	Cells  [][3]uint16   `json:"cells,omitempty"`
}

func pointsOf(va *geometry.VertexArray) (points []pointRecord) {
	indices := va.Indices()
	points = make([]pointRecord, len(indices))
	for n, i := range indices {
		p, _ := va.Get(i)
		points[n] = pointRecord{Index: i, X: p.X, Y: p.Y, Z: p.Z}
	}
	return
}

// WriteMesh stores vertices, edges with their parameters, and cells in their stored winding
func WriteMesh(w io.Writer, tm *geometry.TriangularMesh) (err error) {
	var (
		iv   = tm.Vertices.Interval()
		file = meshFile{
			Prefix: tm.Vertices.Prefix,
			Start:  iv.Start,
			End:    iv.End,
			Radix:  iv.Radix,
			Points: pointsOf(tm.Vertices),
		}
		data []byte
	)
	for _, ei := range tm.Topology.Edges() {
		e, _ := tm.Topology.Edge(ei)
		file.Edges = append(file.Edges, edgeRecord{
			Vertices:       ei.Vertices(),
			RestLength:     e.RestLength,
			SpringConstant: e.SpringConstant,
		})
	}
	for _, ci := range tm.Topology.Cells() {
		file.Cells = append(file.Cells, ci.Vertices())
	}
	if data, err = yaml.Marshal(file); err != nil {
		return
	}
	_, err = w.Write(data)
	return
}

func ReadMesh(r io.Reader) (tm *geometry.TriangularMesh, err error) {
	var (
		data []byte
		file meshFile
		iv   interval.IndexInterval
	)
	if data, err = io.ReadAll(r); err != nil {
		return
	}
	if err = yaml.Unmarshal(data, &file); err != nil {
		return
	}
	if iv, err = interval.New(file.Start, file.End, file.Radix); err != nil {
		return
	}
	tm = geometry.NewTriangularMesh()
	tm.Vertices = geometry.NewVertexArray(file.Prefix, iv)
	for _, p := range file.Points {
		tm.InsertPoint(p.Index, r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	}
	// Edges first, so cells do not memoize their sides with default parameters
	for _, e := range file.Edges {
		if err = tm.InsertEdge(e.Vertices, e.RestLength, e.SpringConstant); err != nil {
			return nil, fmt.Errorf("edge %v: %w", e.Vertices, err)
		}
	}
	for _, c := range file.Cells {
		if _, err = tm.InsertCell(c); err != nil {
			return nil, fmt.Errorf("cell %v: %w", c, err)
		}
	}
	return
}

// WriteChunk writes the vertices of va to dir/<va.Name()>.yaml
func WriteChunk(dir string, va *geometry.VertexArray) (path string, err error) {
	var (
		iv   = va.Interval()
		data []byte
	)
	file := meshFile{
		Prefix: va.Prefix,
		Start:  iv.Start,
		End:    iv.End,
		Radix:  iv.Radix,
		Points: pointsOf(va),
	}
	if data, err = yaml.Marshal(file); err != nil {
		return
	}
	path = filepath.Join(dir, va.Name()+ChunkExtension)
	err = os.WriteFile(path, data, 0644)
	return
}

/*
ReadChunk loads a chunk written by WriteChunk. The interval is recovered from the hash in the file name
and must agree with the file body, every point must fall inside it.
*/
func ReadChunk(path string, radix int) (va *geometry.VertexArray, err error) {
	var (
		base = strings.TrimSuffix(filepath.Base(path), ChunkExtension)
		dash = strings.LastIndex(base, "-")
		iv   interval.IndexInterval
		data []byte
		file meshFile
	)
	if dash < 0 {
		err = fmt.Errorf("chunk name %q has no interval hash: %w", base, interval.ErrMalformedInterval)
		return
	}
	if iv, err = interval.FromHash(base[dash+1:], radix); err != nil {
		return
	}
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if err = yaml.Unmarshal(data, &file); err != nil {
		return
	}
	if file.Start != iv.Start || file.End != iv.End || file.Prefix != base[:dash] {
		err = fmt.Errorf("chunk %s holds %s [%d,%d), name says %s: %w",
			path, file.Prefix, file.Start, file.End, iv, interval.ErrMalformedInterval)
		return
	}
	va = geometry.NewVertexArray(file.Prefix, iv)
	for _, p := range file.Points {
		if !iv.Contains(uint32(p.Index)) {
			return nil, fmt.Errorf("chunk %s: vertex %d outside %s: %w", path, p.Index, iv, interval.ErrMalformedInterval)
		}
		va.InsertPoint(p.Index, r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	}
	return
}
