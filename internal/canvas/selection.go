/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"layerdraw/internal/domain"
	"layerdraw/internal/layers"
	"layerdraw/internal/vector"
)

// SelectPath selects pathID. With multi the id is toggled in the current
// selection; otherwise it replaces the selection.
func (s *Session) SelectPath(pathID string, multi bool) {
	if !multi {
		s.selected = []string{pathID}
		return
	}
	for i, id := range s.selected {
		if id == pathID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
	s.selected = append(s.selected, pathID)
}

func (s *Session) ClearSelection() { s.selected = nil }

// Selected returns the selected path ids in selection order.
func (s *Session) Selected() []string { return append([]string(nil), s.selected...) }

func (s *Session) deselect(pathID string) {
	for i, id := range s.selected {
		if id == pathID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

// HitTest returns the top-most path under pt. Hidden and locked layers are skipped;
// layers and paths are searched from the top of the z-order down.
func (s *Session) HitTest(pt domain.Point) (layerID, pathID string, ok bool) {
	ls := s.store.Layers()
	for i := len(ls) - 1; i >= 0; i-- {
		l := ls[i]
		if !l.Visible || l.Locked {
			continue
		}
		for j := len(l.Paths) - 1; j >= 0; j-- {
			if hit(l.Paths[j], pt) {
				return l.ID, l.Paths[j].ID, true
			}
		}
	}
	return "", "", false
}

func hit(p domain.VectorPath, pt domain.Point) bool {
	return vector.NearPolyline(pt, p.Points, math.Max(minHitRadius, p.StrokeWidth)/2)
}

// moveSelection translates every selected path that sits on an unlocked layer.
func (s *Session) moveSelection(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	xf := vector.Translate(dx, dy)
	for _, id := range s.selected {
		layerID, p, ok := s.store.FindPath(id)
		if !ok {
			continue
		}
		if l, ok := s.store.Layer(layerID); !ok || l.Locked {
			continue
		}
		s.store.UpdatePath(layerID, id, layers.PathPatch{}.WithPoints(xf.ApplyAll(p.Points)))
	}
}
