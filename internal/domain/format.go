/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Format is an export file format token.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for export format tokens other than svg and pdf.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat accepts exactly "svg" or "pdf". The error names the offending value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSVG, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// MediaType returns the MIME type of the artifact.
func (f Format) MediaType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Validate reports every invariant violation of a persisted path.
func (p VectorPath) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, errors.New("path id is empty"))
	}
	if len(p.Points) == 0 {
		errs = append(errs, fmt.Errorf("path %s has no points", p.ID))
	}
	if _, err := ParseHexColor(p.Stroke); err != nil {
		errs = append(errs, fmt.Errorf("path %s: %w", p.ID, err))
	}
	if p.StrokeWidth <= 0 {
		errs = append(errs, fmt.Errorf("path %s: stroke width must be positive, got %g", p.ID, p.StrokeWidth))
	}
	return errors.Join(errs...)
}
