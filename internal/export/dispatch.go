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
	"fmt"
	"log/slog"
	"strings"

	"layerdraw/internal/domain"
	applog "layerdraw/internal/log"
)

// DefaultStem is the filename stem used when the caller gives none.
const DefaultStem = "layered-drawing"

// Exporter renders a layer stack in a chosen format and hands the result to a Sink.
type Exporter struct {
	// Surfaces backs PDF rendering; nil makes PDF export fail with ErrEnvironmentUnsupported.
	Surfaces SurfaceFactory
	// Sink receives the artifact. Without a sink Export only returns it.
	Sink Sink
	// Recorder, if set, is told about every delivered artifact.
	Recorder Recorder
	Logger   *slog.Logger
}

// NewExporter returns an exporter drawing PDFs with gofpdf and delivering to sink.
func NewExporter(sink Sink, logger *slog.Logger) *Exporter {
	return &Exporter{Surfaces: NewGofpdfSurface, Sink: sink, Logger: logger}
}

// Export renders layers as format ("svg" or "pdf") and delivers the artifact named stem.format.
// Unknown formats fail with ErrUnsupportedFormat naming the value. A non-positive size selects the
// format's default canvas. Render and delivery errors are returned as is, wrapped; nothing is retried.
func (e *Exporter) Export(ctx context.Context, format string, layers []domain.Layer, stem string, width, height float64) (Artifact, error) {
	log := applog.WithOperation(applog.OrDefault(e.Logger, "export"), "export")
	f, err := domain.ParseFormat(format)
	if err != nil {
		log.Warn("export rejected", slog.String("format", format), slog.Any("err", err))
		return Artifact{}, err
	}
	if strings.TrimSpace(stem) == "" {
		stem = DefaultStem
	}

	data, err := e.Render(ctx, f, layers, width, height)
	if err != nil {
		log.Error("render failed", slog.String("format", string(f)), slog.Any("err", err))
		return Artifact{}, fmt.Errorf("render %s: %w", f, err)
	}
	a := Artifact{Format: f, Filename: stem + f.Extension(), MediaType: f.MediaType(), Data: data}

	if e.Sink != nil {
		if err := e.Sink.Deliver(ctx, a); err != nil {
			log.Error("delivery failed", slog.String("file", a.Filename), slog.Any("err", err))
			return Artifact{}, fmt.Errorf("deliver %s: %w", a.Filename, err)
		}
	}
	if e.Recorder != nil {
		if err := e.Recorder.RecordExport(ctx, a); err != nil {
			log.Warn("export history not recorded", slog.String("file", a.Filename), slog.Any("err", err))
		}
	}
	log.Info("exported", slog.String("file", a.Filename), slog.Int("bytes", len(a.Data)))
	return a, nil
}

// Render produces the document bytes for an already parsed format.
func (e *Exporter) Render(ctx context.Context, f domain.Format, layers []domain.Layer, width, height float64) ([]byte, error) {
	switch f {
	case domain.FormatSVG:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if width <= 0 || height <= 0 {
			width, height = DefaultSVGWidth, DefaultSVGHeight
		}
		return []byte(RenderSVG(layers, width, height)), nil
	case domain.FormatPDF:
		return RenderPDF(ctx, e.Surfaces, layers, width, height)
	}
	return nil, fmt.Errorf("%w %q", domain.ErrUnsupportedFormat, string(f))
}
