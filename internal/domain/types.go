/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model of a layered drawing.
// Types are plain data and serialize to the human-readable JSON manifest (drawing.json).

// Point is a canvas coordinate. Origin is top-left, y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VectorPath is a single freehand stroke.
// Points are in drawing order; Stroke is a #RRGGBB color; StrokeWidth is in screen pixels.
type VectorPath struct {
	ID          string  `json:"id"`
	Points      []Point `json:"points"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Clone returns a deep copy of the path.
func (p VectorPath) Clone() VectorPath {
	out := p
	if p.Points != nil {
		out.Points = append([]Point(nil), p.Points...)
	}
	return out
}

// Layer is a named, orderable container of paths.
// Later paths are drawn on top of earlier ones.
type Layer struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Visible bool         `json:"visible"`
	Locked  bool         `json:"locked"` // advisory: blocks pointer editing, not export
	Paths   []VectorPath `json:"paths"`
}

// Clone returns a deep copy of the layer including its paths.
func (l Layer) Clone() Layer {
	out := l
	out.Paths = make([]VectorPath, len(l.Paths))
	for i, p := range l.Paths {
		out.Paths[i] = p.Clone()
	}
	return out
}

// CloneLayers deep-copies a layer sequence.
func CloneLayers(in []Layer) []Layer {
	out := make([]Layer, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}

// Document is the persisted drawing: canvas size plus the ordered layer stack.
type Document struct {
	Name          string  `json:"name"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	ActiveLayerID string  `json:"activeLayerId,omitempty"`
	Layers        []Layer `json:"layers"`
}
