/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
	"layerdraw/internal/domain"
	"layerdraw/internal/version"
)

// DrawingSurface is the low-level vector drawing capability the PDF renderer draws on.
// Coordinates are in the page unit with origin top-left.
type DrawingSurface interface {
	// SetDrawColor sets the stroke color from a #RRGGBB string.
	SetDrawColor(hex string) error
	// SetFillColor sets the fill color from channels in [0,1].
	SetFillColor(r, g, b float64)
	SetLineWidth(w float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Stroke strokes the path built since the last MoveTo.
	Stroke()
	// Circle draws a circle; style "F" fills, "D" strokes, "FD" does both.
	Circle(x, y, r float64, style string)
	// Output finalizes the document and returns its bytes.
	Output() ([]byte, error)
}

// PageSetup describes the single page a surface is created with.
type PageSetup struct {
	Orientation string // "portrait" or "landscape"; Width and Height are taken as given for portrait
	Unit        string // "pt"
	Width       float64
	Height      float64
}

// SurfaceFactory creates a drawing surface. It may be nil when the running
// environment has no PDF backend; the renderer then fails with ErrEnvironmentUnsupported.
type SurfaceFactory func(PageSetup) (DrawingSurface, error)

// creationDate is used for both info dictionary dates so that equal drawings produce equal bytes.
var creationDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// GofpdfSurface draws onto a single gofpdf page.
type GofpdfSurface struct {
	pdf *gofpdf.Fpdf
}

// NewGofpdfSurface is the production SurfaceFactory.
func NewGofpdfSurface(ps PageSetup) (DrawingSurface, error) {
	orientation := "P"
	if ps.Orientation == "landscape" {
		orientation = "L"
	}
	unit := ps.Unit
	if unit == "" {
		unit = "pt"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        unit,
		Size:           gofpdf.SizeType{Wd: ps.Width, Ht: ps.Height},
	})
	pdf.SetCreator("layerdraw "+version.String(), false)
	pdf.SetCreationDate(creationDate)
	pdf.SetModificationDate(creationDate)
	pdf.SetCatalogSort(true)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("init pdf: %w", err)
	}
	return &GofpdfSurface{pdf: pdf}, nil
}

func (s *GofpdfSurface) SetDrawColor(hex string) error {
	c, err := domain.ParseHexColor(hex)
	if err != nil {
		return err
	}
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	return nil
}

func (s *GofpdfSurface) SetFillColor(r, g, b float64) {
	s.pdf.SetFillColor(channel(r), channel(g), channel(b))
}

func (s *GofpdfSurface) SetLineWidth(w float64) { s.pdf.SetLineWidth(w) }
func (s *GofpdfSurface) MoveTo(x, y float64)    { s.pdf.MoveTo(x, y) }
func (s *GofpdfSurface) LineTo(x, y float64)    { s.pdf.LineTo(x, y) }
func (s *GofpdfSurface) Stroke()                { s.pdf.DrawPath("D") }

func (s *GofpdfSurface) Circle(x, y, r float64, style string) { s.pdf.Circle(x, y, r, style) }

func (s *GofpdfSurface) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// channel maps [0,1] to 0..255, clamping out-of-range input.
func channel(v float64) int {
	return int(math.Round(math.Min(1, math.Max(0, v)) * 255))
}
