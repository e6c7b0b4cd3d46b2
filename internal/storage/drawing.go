/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"layerdraw/internal/domain"
	applog "layerdraw/internal/log"
)

const (
	ManifestFileName = "drawing.json"
	BackupsDirName   = "backups"
	ExportsDirName   = "exports"

	backupStamp = "20060102-150405"
)

var standardSubDirs = []string{
	ExportsDirName,
	BackupsDirName,
}

// DrawingHandle keeps track of a drawing loaded from or saved to disk.
// Root is the drawing directory containing drawing.json and its subfolders.
type DrawingHandle struct {
	Root         string
	ManifestPath string
	Document     domain.Document
	// Recovered is set when Open had to fall back to a backup.
	Recovered bool
}

// ExportsDir is where file exports of this drawing go by default.
func (h *DrawingHandle) ExportsDir() string { return filepath.Join(h.Root, ExportsDirName) }

// InitDrawing creates the drawing directory at root (creating it if needed),
// scaffolds the standard subfolders and writes doc as the first manifest.
func InitDrawing(root string, doc domain.Document) (*DrawingHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &DrawingHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Document:     doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	applog.WithComponent("storage").Info("drawing created", slog.String("root", root), slog.String("name", doc.Name))
	return h, nil
}

// Open loads an existing drawing from root. If the manifest is missing, unparsable or
// fails schema validation, the latest backup is used instead and Recovered is set.
func Open(root string) (*DrawingHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))
	mpath := filepath.Join(root, ManifestFileName)
	doc, err := readManifest(mpath)
	if err == nil {
		return &DrawingHandle{Root: root, ManifestPath: mpath, Document: doc}, nil
	}
	l.Warn("manifest unusable, trying backup", slog.Any("err", err))
	bdoc, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
	}
	l.Info("recovered from backup")
	return &DrawingHandle{Root: root, ManifestPath: mpath, Document: *bdoc, Recovered: true}, nil
}

func readManifest(path string) (domain.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	return decodeManifest(b)
}

func decodeManifest(b []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := ValidateDocument(b); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// Save writes h.Document to disk with transactional semantics and a timestamped
// backup of the previous manifest (if present). A document that would not pass
// schema validation is rejected before anything is written.
func Save(h *DrawingHandle) error {
	if h == nil {
		return errors.New("nil DrawingHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DrawingHandle: missing paths")
	}
	data, err := encodeManifest(h.Document)
	if err != nil {
		return err
	}
	if err := ValidateDocument(data); err != nil {
		return err
	}

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, time.Now().Format(backupStamp))
		if cerr := copyFile(h.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	if rerr := replaceFile(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	h.Recovered = false
	return nil
}

// removeBeforeRename is set where rename refuses to overwrite an existing file.
var removeBeforeRename = runtime.GOOS == "windows"

// replaceFile moves src over dst. Elsewhere the rename is atomic and dst is never missing.
func replaceFile(src, dst string) error {
	if removeBeforeRename {
		if _, err := os.Stat(dst); err == nil {
			_ = os.Remove(dst)
		}
	}
	return os.Rename(src, dst)
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if needed, and updates the handle.
func SaveAs(h *DrawingHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DrawingHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document next to the backups without
// touching drawing.json. It returns the snapshot path.
func AutosaveCrashSnapshot(h *DrawingHandle) (string, error) {
	if h == nil {
		return "", errors.New("nil DrawingHandle")
	}
	data, err := encodeManifest(h.Document)
	if err != nil {
		return "", err
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	p := filepath.Join(bdir, fmt.Sprintf("drawing.crash-%s.json", time.Now().Format(backupStamp)))
	if err := writeFileSync(p, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return p, nil
}

// encodeManifest marshals doc in human-readable form with empty layer and path lists kept as [].
func encodeManifest(doc domain.Document) ([]byte, error) {
	doc.Layers = domain.CloneLayers(doc.Layers)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create drawing root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// Backups lists manifest backups of the drawing at root, oldest first.
func Backups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	// the timestamp in the name sorts lexicographically
	sort.Strings(out)
	return out, nil
}

// openFromLatestBackup walks the backups newest first and returns the first valid one.
func openFromLatestBackup(root string) (*domain.Document, error) {
	candidates, err := Backups(root)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		doc, err := readManifest(candidates[i])
		if err == nil {
			return &doc, nil
		}
		lastErr = fmt.Errorf("backup %s: %w", filepath.Base(candidates[i]), err)
	}
	return nil, lastErr
}
