/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layers

import (
	"errors"
	"sort"
	"testing"

	"layerdraw/internal/domain"
)

func newTestStore() *Store {
	return New(Config{IDs: &SequenceGenerator{Prefix: "l"}})
}

func ids(ls []domain.Layer) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddLayerDefaultsAndActive(t *testing.T) {
	s := newTestStore()
	l1 := s.AddLayer()
	l2 := s.AddLayer()
	if l1.Name != "Layer 1" || l2.Name != "Layer 2" {
		t.Fatalf("unexpected names %q %q", l1.Name, l2.Name)
	}
	if !l2.Visible || l2.Locked || l2.Paths == nil || len(l2.Paths) != 0 {
		t.Fatalf("unexpected defaults: %+v", l2)
	}
	if id, ok := s.ActiveLayerID(); !ok || id != l2.ID {
		t.Fatalf("active = %q, want %q", id, l2.ID)
	}
}

func TestInitialLayer(t *testing.T) {
	s := New(Config{IDs: &SequenceGenerator{}, InitialLayer: true})
	if s.Len() != 1 {
		t.Fatalf("expected one seeded layer, got %d", s.Len())
	}
	l, ok := s.ActiveLayer()
	if !ok || l.Name != "Layer 1" {
		t.Fatalf("unexpected active layer %+v ok=%v", l, ok)
	}
}

func TestLayerNameUsesCurrentCount(t *testing.T) {
	s := newTestStore()
	a := s.AddLayer()
	s.AddLayer()
	s.RemoveLayer(a.ID)
	if l := s.AddLayer(); l.Name != "Layer 2" {
		t.Fatalf("name after removal = %q, want Layer 2", l.Name)
	}
}

func TestRemoveLayerActiveRederivation(t *testing.T) {
	s := newTestStore()
	a := s.AddLayer()
	b := s.AddLayer()
	c := s.AddLayer()

	// removing a non-active layer keeps the active one
	s.RemoveLayer(b.ID)
	if id, _ := s.ActiveLayerID(); id != c.ID {
		t.Fatalf("active changed to %q", id)
	}
	// removing the active layer falls back to the first remaining
	s.RemoveLayer(c.ID)
	if id, _ := s.ActiveLayerID(); id != a.ID {
		t.Fatalf("active = %q, want first layer %q", id, a.ID)
	}
	// unknown id is a no-op
	s.RemoveLayer("nope")
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
	// removing the sole layer leaves no active layer
	s.RemoveLayer(a.ID)
	if id, ok := s.ActiveLayerID(); ok || id != "" {
		t.Fatalf("expected no active layer, got %q", id)
	}
}

func TestToggleAndRename(t *testing.T) {
	s := newTestStore()
	l := s.AddLayer()
	s.ToggleLayerVisibility(l.ID)
	s.ToggleLayerLock(l.ID)
	s.ToggleLayerLock("missing")
	got, _ := s.Layer(l.ID)
	if got.Visible || !got.Locked {
		t.Fatalf("toggle failed: %+v", got)
	}
	if err := s.RenameLayer(l.ID, "  Sky  "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ = s.Layer(l.ID)
	if got.Name != "  Sky  " {
		t.Fatalf("name not stored verbatim: %q", got.Name)
	}
	if err := s.RenameLayer(l.ID, "   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := s.RenameLayer("missing", "x"); err != nil {
		t.Fatalf("rename of unknown id should be a no-op, got %v", err)
	}
}

func TestReorderLayers(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 4; i++ {
		s.AddLayer()
	}
	before := ids(s.Layers())

	if err := s.ReorderLayers(2, 2); err != nil {
		t.Fatalf("reorder(i,i): %v", err)
	}
	if !equal(ids(s.Layers()), before) {
		t.Fatalf("reorder(i,i) changed order")
	}

	cases := []struct {
		from, to int
		want     []string
	}{
		{0, 3, []string{"l-2", "l-3", "l-4", "l-1"}},
		{3, 0, []string{"l-1", "l-2", "l-3", "l-4"}},
		{1, 2, []string{"l-1", "l-3", "l-2", "l-4"}},
	}
	for _, c := range cases {
		if err := s.ReorderLayers(c.from, c.to); err != nil {
			t.Fatalf("reorder(%d,%d): %v", c.from, c.to, err)
		}
		if got := ids(s.Layers()); !equal(got, c.want) {
			t.Fatalf("reorder(%d,%d) = %v, want %v", c.from, c.to, got, c.want)
		}
	}

	after := ids(s.Layers())
	sort.Strings(after)
	sorted := append([]string(nil), before...)
	sort.Strings(sorted)
	if !equal(after, sorted) {
		t.Fatalf("reorder is not a permutation: %v vs %v", after, sorted)
	}
}

func TestReorderOutOfRange(t *testing.T) {
	s := newTestStore()
	s.AddLayer()
	s.AddLayer()
	before := ids(s.Layers())
	for _, c := range [][2]int{{-1, 0}, {0, 2}, {2, 0}, {0, -1}} {
		err := s.ReorderLayers(c[0], c[1])
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("reorder(%d,%d) err = %v, want ErrIndexOutOfRange", c[0], c[1], err)
		}
	}
	if !equal(ids(s.Layers()), before) {
		t.Fatalf("failed reorder changed order")
	}
}

func TestPathMutations(t *testing.T) {
	s := newTestStore()
	l := s.AddLayer()
	p1 := domain.VectorPath{ID: "p1", Points: []domain.Point{{X: 1, Y: 1}}, Stroke: "#000000", StrokeWidth: 2}
	p2 := domain.VectorPath{ID: "p2", Points: []domain.Point{{X: 2, Y: 2}, {X: 3, Y: 3}}, Stroke: "#FF0000", StrokeWidth: 4}
	s.AddPathToLayer(l.ID, p1)
	s.AddPathToLayer(l.ID, p2)
	s.AddPathToLayer("missing", p1)

	// caller's slice must not alias store state
	p1.Points[0].X = 100

	got, _ := s.Layer(l.ID)
	if len(got.Paths) != 2 || got.Paths[0].ID != "p1" || got.Paths[1].ID != "p2" {
		t.Fatalf("unexpected paths: %+v", got.Paths)
	}
	if got.Paths[0].Points[0].X != 1 {
		t.Fatalf("store aliases caller slice")
	}

	s.UpdatePath(l.ID, "p2", PathPatch{}.WithStroke("#00FF00"))
	s.UpdatePath(l.ID, "missing", PathPatch{}.WithStrokeWidth(9))
	got, _ = s.Layer(l.ID)
	if p := got.Paths[1]; p.Stroke != "#00FF00" || p.StrokeWidth != 4 || len(p.Points) != 2 {
		t.Fatalf("partial update lost fields: %+v", p)
	}

	s.UpdatePath(l.ID, "p1", PathPatch{}.WithPoints([]domain.Point{{X: 7, Y: 7}, {X: 8, Y: 8}}).WithStrokeWidth(1))
	if _, p, ok := s.FindPath("p1"); !ok || len(p.Points) != 2 || p.StrokeWidth != 1 || p.Stroke != "#000000" {
		t.Fatalf("update points/width failed: %+v", p)
	}

	s.RemovePathFromLayer(l.ID, "p1")
	s.RemovePathFromLayer(l.ID, "missing")
	got, _ = s.Layer(l.ID)
	if len(got.Paths) != 1 || got.Paths[0].ID != "p2" {
		t.Fatalf("remove failed: %+v", got.Paths)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	l := s.AddLayer()
	s.AddPathToLayer(l.ID, domain.VectorPath{ID: "p", Points: []domain.Point{{X: 1, Y: 1}}, Stroke: "#000000", StrokeWidth: 1})
	snap := s.Layers()
	snap[0].Name = "mutated"
	snap[0].Paths[0].Points[0].Y = 50
	fresh := s.Layers()
	if fresh[0].Name != "Layer 1" || fresh[0].Paths[0].Points[0].Y != 1 {
		t.Fatalf("snapshot mutation leaked into store: %+v", fresh[0])
	}
}

func TestSetActiveLayer(t *testing.T) {
	s := newTestStore()
	a := s.AddLayer()
	s.AddLayer()
	s.SetActiveLayer(a.ID)
	s.SetActiveLayer("missing")
	if id, _ := s.ActiveLayerID(); id != a.ID {
		t.Fatalf("active = %q, want %q", id, a.ID)
	}
}

func TestDocumentRestoreRoundTrip(t *testing.T) {
	s := newTestStore()
	a := s.AddLayer()
	b := s.AddLayer()
	s.AddPathToLayer(a.ID, domain.VectorPath{ID: "p", Points: []domain.Point{{X: 1, Y: 2}}, Stroke: "#123456", StrokeWidth: 3})
	doc := s.Document("sketch", 800, 600)
	if doc.ActiveLayerID != b.ID || len(doc.Layers) != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	r := newTestStore()
	r.Restore(doc)
	if !equal(ids(r.Layers()), ids(s.Layers())) {
		t.Fatalf("restore lost order")
	}
	if id, _ := r.ActiveLayerID(); id != b.ID {
		t.Fatalf("restored active = %q", id)
	}

	doc.ActiveLayerID = "gone"
	r.Restore(doc)
	if id, _ := r.ActiveLayerID(); id != a.ID {
		t.Fatalf("unknown active should fall back to first layer, got %q", id)
	}
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := UUIDGenerator{}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
