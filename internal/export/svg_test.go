/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strings"
	"testing"

	"layerdraw/internal/domain"
)

func pts(xy ...float64) []domain.Point {
	out := make([]domain.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, domain.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func twoLayerStack() []domain.Layer {
	return []domain.Layer{
		{ID: "a", Name: "Layer A", Visible: true, Paths: []domain.VectorPath{
			{ID: "p1", Points: pts(0, 0, 10, 5, 20, 10), Stroke: "#FF0000", StrokeWidth: 2},
		}},
		{ID: "b", Name: "Layer B", Visible: false, Paths: []domain.VectorPath{
			{ID: "p2", Points: pts(1, 1, 2, 2), Stroke: "#00FF00", StrokeWidth: 4},
		}},
	}
}

func TestRenderSVG_TwoLayerScenario(t *testing.T) {
	got := RenderSVG(twoLayerStack(), 800, 600)
	want := `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="800" height="600" viewBox="0 0 800 600" xmlns="http://www.w3.org/2000/svg">
<g id="a" data-name="Layer A">
  <path d="M 0 0 L 10 5 L 20 10" stroke="#FF0000" stroke-width="2" fill="none" stroke-linecap="round" stroke-linejoin="round" />
</g>
</svg>
`
	if got != want {
		t.Fatalf("unexpected svg:\n%s\nwant:\n%s", got, want)
	}
	if !strings.HasSuffix(got, "</g>\n</svg>\n") || strings.Contains(got, "\n\n") {
		t.Fatalf("every line, the last included, ends in one newline: %q", got[len(got)-16:])
	}
	if strings.Count(got, "<g ") != 1 || strings.Contains(got, "Layer B") {
		t.Fatalf("hidden layer leaked into output")
	}
}

func TestRenderSVG_SinglePointCircle(t *testing.T) {
	cases := []struct {
		width float64
		want  string
	}{
		{1, `<circle cx="10" cy="10" r="5" fill="#000000" />`},
		{8, `<circle cx="10" cy="10" r="8" fill="#000000" />`},
		{5, `<circle cx="10" cy="10" r="5" fill="#000000" />`},
	}
	for _, tc := range cases {
		ls := []domain.Layer{{ID: "l", Name: "L", Visible: true, Paths: []domain.VectorPath{
			{ID: "p", Points: pts(10, 10), Stroke: "#000000", StrokeWidth: tc.width},
		}}}
		if got := RenderSVG(ls, 800, 600); !strings.Contains(got, tc.want) {
			t.Fatalf("width %v: missing %s in\n%s", tc.width, tc.want, got)
		}
	}
}

func TestRenderSVG_EmptyPathEmitsNothing(t *testing.T) {
	ls := []domain.Layer{{ID: "l", Name: "L", Visible: true, Paths: []domain.VectorPath{
		{ID: "p", Stroke: "#000000", StrokeWidth: 2},
	}}}
	got := RenderSVG(ls, 10, 10)
	if strings.Contains(got, "<path") || strings.Contains(got, "<circle") {
		t.Fatalf("zero-point path produced markup:\n%s", got)
	}
	if !strings.Contains(got, "<g id=\"l\" data-name=\"L\">\n</g>\n") {
		t.Fatalf("visible layer should still produce its group:\n%s", got)
	}
}

func TestRenderSVG_ZOrderAndDeterminism(t *testing.T) {
	ls := []domain.Layer{
		{ID: "bottom", Name: "Bottom", Visible: true, Paths: []domain.VectorPath{
			{ID: "p1", Points: pts(0, 0, 1, 1), Stroke: "#111111", StrokeWidth: 1},
			{ID: "p2", Points: pts(2, 2, 3, 3), Stroke: "#222222", StrokeWidth: 1},
		}},
		{ID: "top", Name: "Top", Visible: true, Paths: []domain.VectorPath{
			{ID: "p3", Points: pts(4, 4), Stroke: "#333333", StrokeWidth: 1},
		}},
	}
	first := RenderSVG(ls, 800, 600)
	if second := RenderSVG(ls, 800, 600); first != second {
		t.Fatalf("render is not deterministic")
	}
	order := []string{`id="bottom"`, "#111111", "#222222", `id="top"`, "#333333"}
	last := -1
	for _, marker := range order {
		i := strings.Index(first, marker)
		if i <= last {
			t.Fatalf("%s out of order in\n%s", marker, first)
		}
		last = i
	}
}

func TestRenderSVG_HidingLayerRemovesExactlyItsGroup(t *testing.T) {
	ls := twoLayerStack()
	ls[1].Visible = true
	both := RenderSVG(ls, 800, 600)
	ls[1].Visible = false
	one := RenderSVG(ls, 800, 600)
	group := "<g id=\"b\" data-name=\"Layer B\">\n  <path d=\"M 1 1 L 2 2\" stroke=\"#00FF00\" stroke-width=\"4\" fill=\"none\" stroke-linecap=\"round\" stroke-linejoin=\"round\" />\n</g>\n"
	if strings.Replace(both, group, "", 1) != one {
		t.Fatalf("hiding layer b changed more than its group:\n%s\nvs\n%s", both, one)
	}
}

func TestRenderSVG_EscapesAttributesAndFormatsNumbers(t *testing.T) {
	ls := []domain.Layer{{ID: "x", Name: `Ink & "Notes" <1>`, Visible: true, Paths: []domain.VectorPath{
		{ID: "p", Points: pts(0.5, 1.25, 100, 2e-3), Stroke: "#ABCDEF", StrokeWidth: 2.5},
	}}}
	got := RenderSVG(ls, 612.5, 792)
	for _, want := range []string{
		`data-name="Ink &amp; &quot;Notes&quot; &lt;1&gt;"`,
		`d="M 0.5 1.25 L 100 0.002"`,
		`stroke-width="2.5"`,
		`viewBox="0 0 612.5 792"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %s in\n%s", want, got)
		}
	}
}

func TestRenderSVGParsesStrictly(t *testing.T) {
	layers := twoLayerStack()
	sum, err := InspectSVG([]byte(RenderSVG(layers, 800, 600)))
	if err != nil {
		t.Fatalf("InspectSVG: %v", err)
	}
	if sum.Width != 800 || sum.Height != 600 || sum.Paths != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	layers[1].Visible = true
	layers[1].Paths = append(layers[1].Paths, domain.VectorPath{ID: "dot", Points: pts(5, 5), Stroke: "#0000FF", StrokeWidth: 1})
	sum, err = InspectSVG([]byte(RenderSVG(layers, 0, 0)))
	if err != nil {
		t.Fatalf("InspectSVG: %v", err)
	}
	if sum.Paths != 3 || sum.Width != DefaultSVGWidth {
		t.Fatalf("circle and second layer not parsed: %+v", sum)
	}
}

func TestInspectSVGRejectsGarbage(t *testing.T) {
	if _, err := InspectSVG([]byte("not svg at all")); err == nil {
		t.Fatalf("expected parse error")
	}
}
