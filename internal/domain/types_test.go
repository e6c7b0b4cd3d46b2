/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDocumentJSONFieldNames(t *testing.T) {
	d := Document{
		Name:   "Sketch",
		Width:  800,
		Height: 600,
		Layers: []Layer{{
			ID: "l1", Name: "Layer 1", Visible: true,
			Paths: []VectorPath{{ID: "p1", Points: []Point{{X: 1, Y: 2}}, Stroke: "#FF0000", StrokeWidth: 2}},
		}},
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"strokeWidth":2`, `"visible":true`, `"locked":false`, `"points":[{"x":1,"y":2}]`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json %s missing %s", s, want)
		}
	}
}

func TestLayerCloneIsDeep(t *testing.T) {
	l := Layer{ID: "l1", Paths: []VectorPath{{ID: "p1", Points: []Point{{X: 1, Y: 1}}}}}
	c := l.Clone()
	c.Paths[0].Points[0].X = 99
	c.Paths[0].ID = "changed"
	if l.Paths[0].Points[0].X != 1 || l.Paths[0].ID != "p1" {
		t.Fatalf("clone shares memory with original: %+v", l)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#FF0000", RGB{255, 0, 0}, false},
		{"#00ff7f", RGB{0, 255, 127}, false},
		{"000000", RGB{}, false},
		{"#FFF", RGB{}, true},
		{"#GG0000", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, c := range cases {
		got, err := ParseHexColor(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Fatalf("ParseHexColor(%q) err = %v, want ErrInvalidColor", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("ParseHexColor(%q) = %+v, %v; want %+v", c.in, got, err, c.want)
		}
	}
}

func TestNormalized(t *testing.T) {
	r, g, b := RGB{R: 255, G: 0, B: 51}.Normalized()
	if r != 1 || g != 0 || b != 0.2 {
		t.Fatalf("Normalized = %v %v %v", r, g, b)
	}
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"svg", "pdf"} {
		if f, err := ParseFormat(ok); err != nil || string(f) != ok {
			t.Fatalf("ParseFormat(%q) = %q, %v", ok, f, err)
		}
	}
	_, err := ParseFormat("tiff")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), `"tiff"`) {
		t.Fatalf("error does not name the format: %v", err)
	}
}

func TestVectorPathValidate(t *testing.T) {
	ok := VectorPath{ID: "p", Points: []Point{{}}, Stroke: "#000000", StrokeWidth: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}
	bad := VectorPath{Stroke: "red"}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("invalid path accepted")
	}
	if !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected color error in %v", err)
	}
}
