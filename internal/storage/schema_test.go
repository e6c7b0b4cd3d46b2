/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestManifestConformsToSchema(t *testing.T) {
	h, err := InitDrawing(t.TempDir(), sampleDocument())
	if err != nil {
		t.Fatalf("InitDrawing error: %v", err)
	}
	data, err := os.ReadFile(h.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := ValidateDocument(data); err != nil {
		t.Fatalf("manifest does not conform to schema: %v", err)
	}
}

func TestValidateDocumentRejects(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing layers", `{"name":"x","width":10,"height":10}`, "layers"},
		{"zero width", `{"name":"x","width":0,"height":10,"layers":[]}`, "width"},
		{"bad color", `{"name":"x","width":10,"height":10,"layers":[{"id":"l","name":"L","visible":true,"locked":false,"paths":[{"id":"p","points":[{"x":1,"y":1}],"stroke":"#12345G","strokeWidth":1}]}]}`, "stroke"},
		{"no points", `{"name":"x","width":10,"height":10,"layers":[{"id":"l","name":"L","visible":true,"locked":false,"paths":[{"id":"p","points":[],"stroke":"#123456","strokeWidth":1}]}]}`, "points"},
		{"null paths", `{"name":"x","width":10,"height":10,"layers":[{"id":"l","name":"L","visible":true,"locked":false,"paths":null}]}`, "paths"},
	}
	for _, tc := range cases {
		err := ValidateDocument([]byte(tc.doc))
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("%s: expected ErrSchemaViolation, got %v", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error should mention %q: %v", tc.name, tc.want, err)
		}
	}
}

func TestValidateDocumentRejectsNonJSON(t *testing.T) {
	if err := ValidateDocument([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestManifestSchemaIsCopy(t *testing.T) {
	s := ManifestSchema()
	s[0] = 'X'
	if ManifestSchema()[0] == 'X' {
		t.Fatalf("ManifestSchema must return a copy")
	}
}
