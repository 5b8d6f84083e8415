// Package spatialindex implements the uniform grid broad phase that
// narrows conflict checks down to missions sharing a neighbourhood,
// per spec.md §4.2.
package spatialindex

import "github.com/aerosentry/deconfliction/pkg/mission"

// DefaultGridSize is the cell edge length in metres used when a
// caller does not configure one.
const DefaultGridSize = 50.0

// Ref points at either a mission segment (SegmentIdx >= 0) or a
// static single-waypoint mission (SegmentIdx == StaticWaypoint).
type Ref struct {
	Mission     *mission.Mission
	SegmentIdx  int
}

// StaticWaypoint marks a Ref as covering a mission's sole waypoint
// rather than a segment between two waypoints.
const StaticWaypoint = -1

type cellKey struct {
	x, y, z int
}

// Index is a uniform 3-D grid over cells of GridSize metres. It does
// not inflate cells by each mission's safety buffer: a segment or
// waypoint is only filed into the cells its bare bounding box
// touches, so a query can miss a nearby mission whose safety buffer
// reaches into this one's cells from outside its own bounding box.
// This mirrors the reference implementation and spec.md §9 documents
// it as an accepted conservatism the caller must be aware of.
type Index struct {
	gridSize float64
	cells    map[cellKey][]Ref
}

// New creates an Index with the given cell size. A non-positive size
// falls back to DefaultGridSize.
func New(gridSize float64) *Index {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return &Index{
		gridSize: gridSize,
		cells:    make(map[cellKey][]Ref),
	}
}

func cellCoord(v, size float64) int {
	return int(floorDiv(v, size))
}

// floorDiv divides v by size the way Python's // operator does: it
// floors the quotient, not truncates it. Since spec.md §3 requires
// waypoint coordinates to be non-negative, negative inputs never
// reach here, but this keeps the grid keying semantics identical to
// the reference implementation rather than relying on that invariant.
func floorDiv(v, size float64) float64 {
	q := v / size
	if q < 0 {
		iq := int(q)
		if float64(iq) != q {
			iq--
		}
		return float64(iq)
	}
	return float64(int(q))
}

func boundsCells(min, max, size float64) (lo, hi int) {
	return cellCoord(min, size), cellCoord(max, size)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func segmentBounds(m *mission.Mission, segmentIdx int) (minX, maxX, minY, maxY, minZ, maxZ float64) {
	a, b := m.Waypoints[segmentIdx], m.Waypoints[segmentIdx+1]
	return minF(a.X, b.X), maxF(a.X, b.X),
		minF(a.Y, b.Y), maxF(a.Y, b.Y),
		minF(a.Z, b.Z), maxF(a.Z, b.Z)
}

// AddSegment files the segment between waypoints segmentIdx and
// segmentIdx+1 into every cell its bounding box spans.
func (idx *Index) AddSegment(m *mission.Mission, segmentIdx int) {
	minX, maxX, minY, maxY, minZ, maxZ := segmentBounds(m, segmentIdx)
	idx.forEachCell(minX, maxX, minY, maxY, minZ, maxZ, func(k cellKey) {
		idx.cells[k] = append(idx.cells[k], Ref{Mission: m, SegmentIdx: segmentIdx})
	})
}

// AddStaticWaypoint files a single-waypoint mission's only waypoint
// into the one cell it falls in.
func (idx *Index) AddStaticWaypoint(m *mission.Mission) {
	wp := m.Waypoints[0]
	k := cellKey{cellCoord(wp.X, idx.gridSize), cellCoord(wp.Y, idx.gridSize), cellCoord(wp.Z, idx.gridSize)}
	idx.cells[k] = append(idx.cells[k], Ref{Mission: m, SegmentIdx: StaticWaypoint})
}

// Query returns every Ref filed in a cell touched by the given
// segment's bounding box. A Ref appears once per cell it was filed
// into, so a segment spanning several of the query's cells is
// returned multiple times.
func (idx *Index) Query(m *mission.Mission, segmentIdx int) []Ref {
	minX, maxX, minY, maxY, minZ, maxZ := segmentBounds(m, segmentIdx)
	var out []Ref
	idx.forEachCell(minX, maxX, minY, maxY, minZ, maxZ, func(k cellKey) {
		out = append(out, idx.cells[k]...)
	})
	return out
}

// QueryStatic returns every Ref filed in the single cell a static
// waypoint falls in.
func (idx *Index) QueryStatic(wp mission.Waypoint) []Ref {
	k := cellKey{cellCoord(wp.X, idx.gridSize), cellCoord(wp.Y, idx.gridSize), cellCoord(wp.Z, idx.gridSize)}
	return idx.cells[k]
}

func (idx *Index) forEachCell(minX, maxX, minY, maxY, minZ, maxZ float64, fn func(cellKey)) {
	xLo, xHi := boundsCells(minX, maxX, idx.gridSize)
	yLo, yHi := boundsCells(minY, maxY, idx.gridSize)
	zLo, zHi := boundsCells(minZ, maxZ, idx.gridSize)
	for x := xLo; x <= xHi; x++ {
		for y := yLo; y <= yHi; y++ {
			for z := zLo; z <= zHi; z++ {
				fn(cellKey{x, y, z})
			}
		}
	}
}
