/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas turns pointer events into Layer Store mutations.
// A Session is driven by the UI event loop (one goroutine); it converts client
// coordinates to canvas coordinates, captures pen strokes, and keeps the
// path selection used by the select and move tools.
package canvas

import (
	"fmt"
	"log/slog"
	"math"

	"layerdraw/internal/domain"
	"layerdraw/internal/layers"
	applog "layerdraw/internal/log"
)

// Tool is the current pointer tool.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
	ToolSelect Tool = "select"
	ToolMove   Tool = "move"
)

func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolPen, ToolEraser, ToolSelect, ToolMove:
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

const (
	DefaultColor       = "#000000"
	DefaultStrokeWidth = 2.0
	// minHitRadius matches the radius a single-point stroke is rendered with.
	minHitRadius = 5.0
)

// Pointer is a raw pointer event in client (screen) coordinates.
type Pointer struct{ ClientX, ClientY float64 }

// Session is the editing state of one canvas. It is not safe for concurrent use.
type Session struct {
	store  *layers.Store
	log    *slog.Logger
	origin domain.Point

	tool        Tool
	color       string
	strokeWidth float64

	drawing  bool
	current  *domain.VectorPath
	last     domain.Point
	selected []string
}

// NewSession binds a session to store with the pen tool and default stroke.
func NewSession(store *layers.Store, logger *slog.Logger) *Session {
	return &Session{
		store:       store,
		log:         applog.OrDefault(logger, "canvas"),
		tool:        ToolPen,
		color:       DefaultColor,
		strokeWidth: DefaultStrokeWidth,
	}
}

// SetOrigin sets the canvas element's top-left corner in client coordinates.
func (s *Session) SetOrigin(x, y float64) { s.origin = domain.Point{X: x, Y: y} }

func (s *Session) Tool() Tool { return s.tool }

func (s *Session) SetTool(t Tool) { s.tool = t }

func (s *Session) Color() string { return s.color }

// SetColor sets the stroke color for new paths. It must be #RRGGBB.
func (s *Session) SetColor(c string) error {
	if _, err := domain.ParseHexColor(c); err != nil {
		return err
	}
	s.color = c
	return nil
}

func (s *Session) StrokeWidth() float64 { return s.strokeWidth }

func (s *Session) SetStrokeWidth(w float64) error {
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("stroke width must be positive, got %g", w)
	}
	s.strokeWidth = w
	return nil
}

// Drawing reports whether a pointer drag is in progress.
func (s *Session) Drawing() bool { return s.drawing }

// CurrentPath returns a copy of the stroke being drawn, if any.
func (s *Session) CurrentPath() (domain.VectorPath, bool) {
	if s.current == nil {
		return domain.VectorPath{}, false
	}
	return s.current.Clone(), true
}

func (s *Session) toCanvas(p Pointer) domain.Point {
	return domain.Point{X: p.ClientX - s.origin.X, Y: p.ClientY - s.origin.Y}
}

// PointerDown starts an interaction. Nothing happens without an active layer,
// and the pen does not draw onto a locked one.
func (s *Session) PointerDown(p Pointer) {
	active, ok := s.store.ActiveLayer()
	if !ok {
		return
	}
	if s.tool == ToolPen && active.Locked {
		return
	}
	pt := s.toCanvas(p)
	s.drawing = true
	s.last = pt

	switch s.tool {
	case ToolPen:
		s.current = &domain.VectorPath{
			ID:          s.store.NewPathID(),
			Points:      []domain.Point{pt},
			Stroke:      s.color,
			StrokeWidth: s.strokeWidth,
		}
	case ToolSelect:
		s.ClearSelection()
		if _, pathID, ok := s.HitTest(pt); ok {
			s.selected = []string{pathID}
		}
	case ToolEraser:
		if layerID, pathID, ok := s.HitTest(pt); ok {
			s.store.RemovePathFromLayer(layerID, pathID)
			s.deselect(pathID)
			s.log.Debug("path erased", slog.String("layer", layerID), slog.String("path", pathID))
		}
	case ToolMove:
	}
	s.log.Debug("pointer down", slog.String("tool", string(s.tool)), slog.String("layer", active.ID),
		slog.Float64("x", pt.X), slog.Float64("y", pt.Y))
}

// PointerMove extends the current stroke or drags the selection.
func (s *Session) PointerMove(p Pointer) {
	if !s.drawing {
		return
	}
	if _, ok := s.store.ActiveLayerID(); !ok {
		return
	}
	pt := s.toCanvas(p)
	switch {
	case s.tool == ToolPen && s.current != nil:
		s.current.Points = append(s.current.Points, pt)
	case s.tool == ToolMove && len(s.selected) > 0:
		s.moveSelection(pt.X-s.last.X, pt.Y-s.last.Y)
	}
	s.last = pt
}

// PointerUp finishes the interaction and commits a pen stroke to the active layer.
func (s *Session) PointerUp() {
	if !s.drawing {
		return
	}
	s.drawing = false
	s.commit()
}

// PointerLeave behaves exactly like PointerUp: a stroke in progress is committed, never discarded.
func (s *Session) PointerLeave() {
	if s.drawing {
		s.commit()
	}
	s.drawing = false
}

func (s *Session) commit() {
	if s.tool != ToolPen || s.current == nil {
		return
	}
	path := *s.current
	s.current = nil
	activeID, ok := s.store.ActiveLayerID()
	if !ok {
		return
	}
	s.store.AddPathToLayer(activeID, path)
	s.log.Debug("stroke committed", slog.String("layer", activeID), slog.String("path", path.ID),
		slog.Int("points", len(path.Points)))
}
