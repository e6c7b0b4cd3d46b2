/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"testing"

	"layerdraw/internal/domain"
)

func TestBounds(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Fatalf("expected no bounds for empty points")
	}
	b, ok := Bounds([]domain.Point{{X: 5, Y: 5}, {X: 1, Y: 9}, {X: 3, Y: 2}})
	if !ok || b != (Rect{X: 1, Y: 2, W: 4, H: 7}) {
		t.Fatalf("unexpected bounds: %+v ok=%v", b, ok)
	}
	one, _ := Bounds([]domain.Point{{X: 10, Y: 10}})
	if one != (Rect{X: 10, Y: 10}) {
		t.Fatalf("single point bounds: %+v", one)
	}
}

func TestRectContainsAndInset(t *testing.T) {
	r := Rect{W: 10, H: 10}
	if !r.Contains(domain.Point{X: 10, Y: 10}) {
		t.Fatalf("edge should be inside")
	}
	grown := Rect{X: 10, Y: 10}.Inset(-5, -5)
	if !grown.Contains(domain.Point{X: 6, Y: 14}) || grown.Contains(domain.Point{X: 16, Y: 10}) {
		t.Fatalf("unexpected grown rect %+v", grown)
	}
}

func TestTranslateApplyAll(t *testing.T) {
	in := []domain.Point{{X: 1, Y: 1}, {X: 2, Y: 3}}
	out := Translate(10, -1).ApplyAll(in)
	if out[0] != (domain.Point{X: 11, Y: 0}) || out[1] != (domain.Point{X: 12, Y: 2}) {
		t.Fatalf("translate: %+v", out)
	}
	if in[0].X != 1 {
		t.Fatalf("input mutated")
	}
	if p := Translate(0, 0).Apply(domain.Point{X: 4, Y: 5}); p != (domain.Point{X: 4, Y: 5}) {
		t.Fatalf("zero translate moved point: %+v", p)
	}
}
