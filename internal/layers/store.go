/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layers holds the ordered layer stack of a drawing session.
// The Store is the only writer of layer state; everything it hands out is a deep copy.
//
// Lookups by id are soft: operations on unknown layer or path ids do nothing.
package layers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"layerdraw/internal/domain"
	applog "layerdraw/internal/log"
)

var (
	// ErrIndexOutOfRange is returned by ReorderLayers for indices outside [0, len).
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmptyName is returned by RenameLayer for empty or whitespace-only names.
	ErrEmptyName = errors.New("layer name is empty")
)

// Config controls Store construction.
type Config struct {
	// IDs generates layer ids (and path ids via NewPathID). Defaults to UUIDGenerator.
	IDs IDGenerator
	// InitialLayer seeds the store with "Layer 1", active, like a fresh canvas.
	InitialLayer bool
	Logger       *slog.Logger
}

// Store is an ordered collection of layers plus the active-layer pointer.
// It is safe for concurrent use; each mutation is applied under a single lock.
type Store struct {
	mu     sync.RWMutex
	ids    IDGenerator
	log    *slog.Logger
	layers []domain.Layer
	active string // "" means none
}

func New(cfg Config) *Store {
	if cfg.IDs == nil {
		cfg.IDs = UUIDGenerator{}
	}
	s := &Store{ids: cfg.IDs, log: applog.OrDefault(cfg.Logger, "layers")}
	if cfg.InitialLayer {
		s.AddLayer()
	}
	return s
}

// AddLayer appends a visible, unlocked, empty layer named "Layer N" (N = count+1)
// and makes it active.
func (s *Store) AddLayer() domain.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := domain.Layer{
		ID:      s.ids.NewID(),
		Name:    fmt.Sprintf("Layer %d", len(s.layers)+1),
		Visible: true,
		Paths:   []domain.VectorPath{},
	}
	s.layers = append(s.layers, l)
	s.active = l.ID
	s.log.Debug("layer added", slog.String("layer", l.ID), slog.String("name", l.Name))
	return l.Clone()
}

// RemoveLayer deletes the layer with id. If it was active, the first remaining
// layer becomes active, or none when the stack is empty.
func (s *Store) RemoveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	switch {
	case len(s.layers) == 0:
		s.active = ""
	case s.active == id:
		s.active = s.layers[0].ID
	}
	s.log.Debug("layer removed", slog.String("layer", id), slog.Int("remaining", len(s.layers)))
}

func (s *Store) ToggleLayerVisibility(id string) {
	s.mutateLayer(id, func(l *domain.Layer) { l.Visible = !l.Visible })
}

func (s *Store) ToggleLayerLock(id string) {
	s.mutateLayer(id, func(l *domain.Layer) { l.Locked = !l.Locked })
}

// RenameLayer stores name verbatim. Blank names are rejected with ErrEmptyName.
func (s *Store) RenameLayer(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	s.mutateLayer(id, func(l *domain.Layer) { l.Name = name })
	return nil
}

// ReorderLayers moves the layer at from to position to, shifting the others.
func (s *Store) ReorderLayers(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder %d -> %d with %d layers: %w", from, to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	moved := s.layers[from]
	rest := append(s.layers[:from:from], s.layers[from+1:]...)
	out := make([]domain.Layer, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	s.layers = out
	return nil
}

// AddPathToLayer appends a copy of path to the layer's path sequence.
func (s *Store) AddPathToLayer(layerID string, path domain.VectorPath) {
	p := path.Clone()
	s.mutateLayer(layerID, func(l *domain.Layer) { l.Paths = append(l.Paths, p) })
}

func (s *Store) RemovePathFromLayer(layerID, pathID string) {
	s.mutateLayer(layerID, func(l *domain.Layer) {
		for i, p := range l.Paths {
			if p.ID == pathID {
				l.Paths = append(l.Paths[:i], l.Paths[i+1:]...)
				return
			}
		}
	})
}

// UpdatePath merges the set fields of patch into the matching path.
func (s *Store) UpdatePath(layerID, pathID string, patch PathPatch) {
	if patch.IsEmpty() {
		return
	}
	s.mutateLayer(layerID, func(l *domain.Layer) {
		for i, p := range l.Paths {
			if p.ID == pathID {
				l.Paths[i] = patch.Apply(p)
				return
			}
		}
	})
}

// SetActiveLayer makes id the active layer. Unknown ids are ignored.
func (s *Store) SetActiveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) >= 0 {
		s.active = id
	}
}

// ActiveLayerID returns the active layer id; ok is false when there is none.
func (s *Store) ActiveLayerID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

func (s *Store) ActiveLayer() (domain.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(s.active); i >= 0 {
		return s.layers[i].Clone(), true
	}
	return domain.Layer{}, false
}

func (s *Store) Layer(id string) (domain.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.layers[i].Clone(), true
	}
	return domain.Layer{}, false
}

// Layers returns a deep-copied snapshot of the stack in order.
func (s *Store) Layers() []domain.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLayers(s.layers)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// FindPath locates a path by id across all layers.
func (s *Store) FindPath(pathID string) (layerID string, path domain.VectorPath, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		for _, p := range l.Paths {
			if p.ID == pathID {
				return l.ID, p.Clone(), true
			}
		}
	}
	return "", domain.VectorPath{}, false
}

// NewPathID draws an id from the store's generator.
func (s *Store) NewPathID() string { return s.ids.NewID() }

// Document captures the current state as a persistable document.
func (s *Store) Document(name string, width, height float64) domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Document{
		Name:          name,
		Width:         width,
		Height:        height,
		ActiveLayerID: s.active,
		Layers:        domain.CloneLayers(s.layers),
	}
}

// Restore replaces the whole state with doc. A missing or unknown active id
// falls back to the first layer.
func (s *Store) Restore(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = domain.CloneLayers(doc.Layers)
	for i := range s.layers {
		if s.layers[i].Paths == nil {
			s.layers[i].Paths = []domain.VectorPath{}
		}
	}
	s.active = ""
	if s.indexLocked(doc.ActiveLayerID) >= 0 {
		s.active = doc.ActiveLayerID
	} else if len(s.layers) > 0 {
		s.active = s.layers[0].ID
	}
	s.log.Debug("store restored", slog.Int("layers", len(s.layers)))
}

func (s *Store) mutateLayer(id string, fn func(*domain.Layer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		fn(&s.layers[i])
	}
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}
