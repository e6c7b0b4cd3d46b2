/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layers

import "layerdraw/internal/domain"

// PathPatch is a sparse update for a VectorPath. Nil fields are left untouched.
// The path id is not patchable.
type PathPatch struct {
	Points      *[]domain.Point
	Stroke      *string
	StrokeWidth *float64
}

// WithPoints, WithStroke and WithStrokeWidth build patches fluently:
//
//	layers.PathPatch{}.WithStroke("#00FF00").WithStrokeWidth(4)
func (p PathPatch) WithPoints(pts []domain.Point) PathPatch {
	cp := append([]domain.Point(nil), pts...)
	p.Points = &cp
	return p
}

func (p PathPatch) WithStroke(color string) PathPatch {
	p.Stroke = &color
	return p
}

func (p PathPatch) WithStrokeWidth(w float64) PathPatch {
	p.StrokeWidth = &w
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p PathPatch) IsEmpty() bool {
	return p.Points == nil && p.Stroke == nil && p.StrokeWidth == nil
}

// Apply returns a copy of path with the set fields replaced.
func (p PathPatch) Apply(path domain.VectorPath) domain.VectorPath {
	out := path.Clone()
	if p.Points != nil {
		out.Points = append([]domain.Point(nil), (*p.Points)...)
	}
	if p.Stroke != nil {
		out.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		out.StrokeWidth = *p.StrokeWidth
	}
	return out
}
