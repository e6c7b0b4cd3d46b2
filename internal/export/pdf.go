/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"fmt"

	"layerdraw/internal/domain"
)

const (
	DefaultPDFWidth  = 595
	DefaultPDFHeight = 842

	// StrokeWidthScale converts a canvas stroke width to a PDF line width.
	StrokeWidthScale = 0.1
)

// ErrEnvironmentUnsupported is returned when no drawing surface is available.
var ErrEnvironmentUnsupported = errors.New("pdf export not supported in this environment")

// RenderPDF draws the visible layers onto a fresh single-page surface and returns the
// finished document. Coordinates map 1:1 to points; an empty stack yields a blank page.
// A non-positive size falls back to A4 portrait.
//
// Per path, in z-order:
//   - no points: nothing is drawn
//   - one point: a filled circle of radius max(5, strokeWidth) in the stroke color
//   - otherwise: a polyline stroked with line width strokeWidth*StrokeWidthScale
func RenderPDF(ctx context.Context, surfaces SurfaceFactory, layers []domain.Layer, width, height float64) ([]byte, error) {
	if surfaces == nil {
		return nil, ErrEnvironmentUnsupported
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultPDFWidth, DefaultPDFHeight
	}
	s, err := surfaces(PageSetup{Orientation: "portrait", Unit: "pt", Width: width, Height: height})
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, p := range l.Paths {
			if err := drawPath(s, p); err != nil {
				return nil, fmt.Errorf("layer %s path %s: %w", l.ID, p.ID, err)
			}
		}
	}
	return s.Output()
}

func drawPath(s DrawingSurface, p domain.VectorPath) error {
	if len(p.Points) == 0 {
		return nil
	}
	if len(p.Points) == 1 {
		c, err := domain.ParseHexColor(p.Stroke)
		if err != nil {
			return err
		}
		r, g, b := c.Normalized()
		s.SetFillColor(r, g, b)
		pt := p.Points[0]
		s.Circle(pt.X, pt.Y, dotRadius(p.StrokeWidth), "F")
		return nil
	}
	if err := s.SetDrawColor(p.Stroke); err != nil {
		return err
	}
	s.SetLineWidth(p.StrokeWidth * StrokeWidthScale)
	s.MoveTo(p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		s.LineTo(pt.X, pt.Y)
	}
	s.Stroke()
	return nil
}
