/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"

	"layerdraw/internal/domain"
)

// Polyline queries. A stroke is drawn as straight segments between consecutive points.

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b domain.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// PolylineDistance returns the distance from p to the nearest point of the polyline.
// A single point is treated as a dot. ok is false for an empty slice.
func PolylineDistance(p domain.Point, pts []domain.Point) (d float64, ok bool) {
	switch len(pts) {
	case 0:
		return 0, false
	case 1:
		return math.Hypot(p.X-pts[0].X, p.Y-pts[0].Y), true
	}
	d = math.Inf(1)
	for i := 1; i < len(pts); i++ {
		d = math.Min(d, SegmentDistance(p, pts[i-1], pts[i]))
	}
	return d, true
}

// NearPolyline reports whether p lies within tolerance of the polyline.
// The bounding box is checked first so far-away strokes are rejected cheaply.
func NearPolyline(p domain.Point, pts []domain.Point, tolerance float64) bool {
	b, ok := Bounds(pts)
	if !ok || !b.Inset(-tolerance, -tolerance).Contains(p) {
		return false
	}
	d, _ := PolylineDistance(p, pts)
	return d <= tolerance
}
