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

	"github.com/srwiley/oksvg"
)

// SVGSummary describes a parsed SVG document.
type SVGSummary struct {
	Width, Height float64 // viewBox size
	Paths         int     // drawable elements (paths and dots)
}

// InspectSVG parses an SVG document with a strict parser. Elements the parser
// does not understand are an error, so anything RenderSVG emits must pass.
func InspectSVG(data []byte) (SVGSummary, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.StrictErrorMode)
	if err != nil {
		return SVGSummary{}, fmt.Errorf("parse svg: %w", err)
	}
	return SVGSummary{
		Width:  icon.ViewBox.W,
		Height: icon.ViewBox.H,
		Paths:  len(icon.SVGPaths),
	}, nil
}
