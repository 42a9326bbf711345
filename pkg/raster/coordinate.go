// Package raster provides the 2-D pixel buffer and coordinate primitives
// that the resynthesis engine builds on: a fixed 4-lane-stride pixel
// raster (mirroring the standard library's image.NRGBA.Pix/Stride shape)
// plus a generic scalar grid for per-pixel bookkeeping such as masks,
// confidence, and transfer records.
package raster

import "sort"

// Coordinate is an integer pixel position.
type Coordinate struct {
	X, Y int
}

// Add returns the component-wise sum of c and o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns the component-wise difference c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// IsZero reports whether c is the origin.
func (c Coordinate) IsZero() bool {
	return c.X == 0 && c.Y == 0
}

// DistSq returns the squared Euclidean distance from the origin.
func (c Coordinate) DistSq() int {
	return c.X*c.X + c.Y*c.Y
}

// Less orders coordinates by squared distance from the origin, breaking
// ties by Y then X so that sorting is deterministic but otherwise
// arbitrary, matching the source's "sorted_offsets" ordering.
func (c Coordinate) Less(o Coordinate) bool {
	cd, od := c.DistSq(), o.DistSq()
	if cd != od {
		return cd < od
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// SortedOffsets returns every Coordinate in [-radius-1, radius+1]^2,
// sorted by Less, beginning with the origin. It is used to materialize a
// fixed neighbourhood-search order near a point.
func SortedOffsets(radius int) []Coordinate {
	half := radius + 1
	offsets := make([]Coordinate, 0, (2*half+1)*(2*half+1))
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			offsets = append(offsets, Coordinate{X: x, Y: y})
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i].Less(offsets[j]) })
	return offsets
}
