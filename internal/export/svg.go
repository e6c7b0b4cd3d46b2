/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"layerdraw/internal/domain"
)

const (
	DefaultSVGWidth  = 800
	DefaultSVGHeight = 600

	// MinDotRadius is the smallest radius a single-point path is drawn with,
	// so that a single click stays visible.
	MinDotRadius = 5.0
)

// RenderSVG turns the layer stack into a standalone SVG document.
// Hidden layers are skipped; layer order is z-order and so is path order within a layer.
// The output depends only on the arguments: equal input gives byte-identical output.
func RenderSVG(layers []domain.Layer, width, height float64) string {
	var b strings.Builder
	wf := func(format string, args ...any) { _, _ = fmt.Fprintf(&b, format, args...) }

	w, h := num(width), num(height)
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"no\"?>\n")
	wf("<svg width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\" xmlns=\"http://www.w3.org/2000/svg\">\n", w, h, w, h)
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		wf("<g id=\"%s\" data-name=\"%s\">\n", escAttr(l.ID), escAttr(l.Name))
		for _, p := range l.Paths {
			if el := svgElement(p); el != "" {
				wf("  %s\n", el)
			}
		}
		wf("</g>\n")
	}
	wf("</svg>\n")
	return b.String()
}

// svgElement maps one path to markup: nothing for zero points, a filled dot for
// one point, a round-capped polyline otherwise.
func svgElement(p domain.VectorPath) string {
	switch len(p.Points) {
	case 0:
		return ""
	case 1:
		pt := p.Points[0]
		return fmt.Sprintf("<circle cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"%s\" />",
			num(pt.X), num(pt.Y), num(dotRadius(p.StrokeWidth)), escAttr(p.Stroke))
	}
	return fmt.Sprintf("<path d=\"%s\" stroke=\"%s\" stroke-width=\"%s\" fill=\"none\" stroke-linecap=\"round\" stroke-linejoin=\"round\" />",
		pathData(p.Points), escAttr(p.Stroke), num(p.StrokeWidth))
}

// pathData builds "M x0 y0 L x1 y1 ..." for at least one point.
func pathData(pts []domain.Point) string {
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(num(pts[0].X))
	b.WriteByte(' ')
	b.WriteString(num(pts[0].Y))
	for _, pt := range pts[1:] {
		b.WriteString(" L ")
		b.WriteString(num(pt.X))
		b.WriteByte(' ')
		b.WriteString(num(pt.Y))
	}
	return b.String()
}

func dotRadius(strokeWidth float64) float64 { return math.Max(MinDotRadius, strokeWidth) }

// num formats a coordinate in its shortest decimal form (10, 2.5, 0.125).
func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"\n", "&#10;",
	"\r", "",
)

func escAttr(s string) string { return attrEscaper.Replace(s) }
