/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"layerdraw/internal/canvas"
	"layerdraw/internal/config"
	"layerdraw/internal/crash"
	"layerdraw/internal/domain"
	"layerdraw/internal/export"
	"layerdraw/internal/layers"
	applog "layerdraw/internal/log"
	"layerdraw/internal/storage"
	"layerdraw/internal/version"
)

const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "LayerDraw: layered vector drawings with SVG and PDF export")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  layerdraw version|-v|--version                 Show version")
	_, _ = fmt.Fprintln(w, "  layerdraw init <dir> [name]                    Create a drawing with one empty layer")
	_, _ = fmt.Fprintln(w, "  layerdraw info <dir>                           Print canvas and layer stack")
	_, _ = fmt.Fprintln(w, "  layerdraw save-as <dir> <new-dir>              Copy the drawing to a new folder")
	_, _ = fmt.Fprintln(w, "  layerdraw config                               Show effective settings")
	_, _ = fmt.Fprintln(w, "  layerdraw layer <dir> add [name]               Add a layer on top and make it active")
	_, _ = fmt.Fprintln(w, "  layerdraw layer <dir> remove|hide|lock|select <layer>")
	_, _ = fmt.Fprintln(w, "  layerdraw layer <dir> rename <layer> <name>")
	_, _ = fmt.Fprintln(w, "  layerdraw layer <dir> move <from> <to>         Reorder by 0-based index")
	_, _ = fmt.Fprintln(w, "  layerdraw stroke <dir> [color] [width] x,y [x,y ...]  Draw on the active layer")
	_, _ = fmt.Fprintln(w, "  layerdraw erase <dir> x,y                      Erase the top-most path under x,y")
	_, _ = fmt.Fprintln(w, "  layerdraw export <dir> [svg|pdf] [stem]        Export visible layers")
	_, _ = fmt.Fprintln(w, "  layerdraw history <dir> [limit]                List past exports")
	_, _ = fmt.Fprintln(w, "  layerdraw inspect <file.svg>                   Parse an SVG and summarize it")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "<layer> is a layer id, a 0-based stack index or a layer name.")
}

// app carries what one CLI invocation needs.
type app struct {
	cfg    config.AppConfig
	out    io.Writer
	log    *slog.Logger
	handle *storage.DrawingHandle
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	a := &app{cfg: cfg, out: os.Stdout, log: l}
	code := func() int {
		defer crash.RecoverFunc(func() *storage.DrawingHandle { return a.handle })
		return a.run(os.Args[1:])
	}()
	os.Exit(code)
}

func (a *app) run(args []string) int {
	a.log.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(a.out)
		return exitUsage
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(a.out, "LayerDraw", version.String())
		return exitOK
	case "init":
		err = a.cmdInit(args[1:])
	case "info":
		err = a.cmdInfo(args[1:])
	case "save-as":
		err = a.cmdSaveAs(args[1:])
	case "config":
		err = a.cmdConfig()
	case "layer":
		err = a.cmdLayer(args[1:])
	case "stroke":
		err = a.cmdStroke(args[1:])
	case "erase":
		err = a.cmdErase(args[1:])
	case "export":
		err = a.cmdExport(args[1:])
	case "history":
		err = a.cmdHistory(args[1:])
	case "inspect":
		err = a.cmdInspect(args[1:])
	case "help", "-h", "--help":
		usage(a.out)
		return exitOK
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(a.out, "Error:", err)
		usage(a.out)
		return exitUsage
	default:
		a.log.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(a.out, "Error:", err)
		return exitErr
	}
}

func (a *app) cmdInit(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: init requires <dir>", errUsage)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(abs, storage.ManifestFileName)); err == nil {
		return fmt.Errorf("a drawing already exists at %s", abs)
	}
	name := filepath.Base(abs)
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}
	store := layers.New(layers.Config{InitialLayer: true, Logger: a.log})
	h, err := storage.InitDrawing(abs, store.Document(name, a.cfg.Canvas.Width, a.cfg.Canvas.Height))
	if err != nil {
		return err
	}
	a.handle = h
	_, _ = fmt.Fprintln(a.out, "Created drawing at", abs)
	return nil
}

func (a *app) cmdSaveAs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: save-as requires <dir> and <new-dir>", errUsage)
	}
	if _, err := a.open(args[0]); err != nil {
		return err
	}
	dst, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dst, storage.ManifestFileName)); err == nil {
		return fmt.Errorf("a drawing already exists at %s", dst)
	}
	if err := storage.SaveAs(a.handle, dst); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, "Saved drawing to", a.handle.Root)
	return nil
}

func (a *app) cmdConfig() error {
	if p, err := config.ConfigPath(); err == nil {
		_, _ = fmt.Fprintln(a.out, "File:", p)
	}
	c := a.cfg
	rows := []struct {
		key string
		val any
	}{
		{"canvas.width", c.Canvas.Width},
		{"canvas.height", c.Canvas.Height},
		{"export.dir", c.Export.Dir},
		{"export.stem", c.Export.Stem},
		{"export.format", c.Export.Format},
		{"stroke.color", c.Stroke.Color},
		{"stroke.width", c.Stroke.Width},
		{"logging.level", c.Logging.Level},
		{"logging.format", c.Logging.Format},
		{"logging.source", c.Logging.Source},
		{"logging.file", c.Logging.File},
	}
	for _, r := range rows {
		line := fmt.Sprintf("%-15s %v", r.key, r.val)
		if env, ok := config.EnvOverrideFor(r.key); ok {
			line += "  (from " + env + ")"
		}
		_, _ = fmt.Fprintln(a.out, line)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// open loads the drawing at dir into a fresh Layer Store.
func (a *app) open(dir string) (*layers.Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	h, err := storage.Open(abs)
	if err != nil {
		return nil, err
	}
	a.handle = h
	if h.Recovered {
		_, _ = fmt.Fprintln(a.out, "Warning: drawing.json was unreadable; loaded the latest backup")
	}
	store := layers.New(layers.Config{Logger: a.log})
	store.Restore(h.Document)
	return store, nil
}

// save writes the store back through the open handle.
func (a *app) save(store *layers.Store) error {
	d := a.handle.Document
	a.handle.Document = store.Document(d.Name, d.Width, d.Height)
	return storage.Save(a.handle)
}

func (a *app) cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: info requires <dir>", errUsage)
	}
	store, err := a.open(args[0])
	if err != nil {
		return err
	}
	d := a.handle.Document
	active, _ := store.ActiveLayerID()
	_, _ = fmt.Fprintf(a.out, "Drawing: %s (%gx%g)\n", d.Name, d.Width, d.Height)
	_, _ = fmt.Fprintln(a.out, "Root:", a.handle.Root)
	_, _ = fmt.Fprintln(a.out, "Layers (bottom to top):")
	for i, l := range store.Layers() {
		mark := " "
		if l.ID == active {
			mark = "*"
		}
		_, _ = fmt.Fprintf(a.out, "  %d %s %s %q %s %s paths=%d\n", i, mark, l.ID, l.Name,
			flag(l.Visible, "visible", "hidden"), flag(l.Locked, "locked", "unlocked"), len(l.Paths))
	}
	return nil
}

func flag(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

// resolveLayer accepts a layer id, a 0-based index or a layer name.
func resolveLayer(store *layers.Store, ref string) (string, error) {
	if _, ok := store.Layer(ref); ok {
		return ref, nil
	}
	ls := store.Layers()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n >= len(ls) {
			return "", fmt.Errorf("layer index %d: %w", n, layers.ErrIndexOutOfRange)
		}
		return ls[n].ID, nil
	}
	for _, l := range ls {
		if l.Name == ref {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("no layer %q", ref)
}

func (a *app) cmdLayer(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: layer requires <dir> and an action", errUsage)
	}
	store, err := a.open(args[0])
	if err != nil {
		return err
	}
	action, rest := args[1], args[2:]
	need := func(n int, what string) error {
		if len(rest) < n {
			return fmt.Errorf("%w: layer %s requires %s", errUsage, action, what)
		}
		return nil
	}

	switch action {
	case "add":
		l := store.AddLayer()
		if len(rest) > 0 {
			if err := store.RenameLayer(l.ID, strings.Join(rest, " ")); err != nil {
				return err
			}
		}
		_, _ = fmt.Fprintln(a.out, "Added layer", l.ID)
	case "remove", "hide", "lock", "select":
		if err := need(1, "<layer>"); err != nil {
			return err
		}
		id, err := resolveLayer(store, rest[0])
		if err != nil {
			return err
		}
		switch action {
		case "remove":
			store.RemoveLayer(id)
		case "hide":
			store.ToggleLayerVisibility(id)
		case "lock":
			store.ToggleLayerLock(id)
		case "select":
			store.SetActiveLayer(id)
		}
	case "rename":
		if err := need(2, "<layer> <name>"); err != nil {
			return err
		}
		id, err := resolveLayer(store, rest[0])
		if err != nil {
			return err
		}
		if err := store.RenameLayer(id, strings.Join(rest[1:], " ")); err != nil {
			return err
		}
	case "move":
		if err := need(2, "<from> <to>"); err != nil {
			return err
		}
		from, ferr := strconv.Atoi(rest[0])
		to, terr := strconv.Atoi(rest[1])
		if ferr != nil || terr != nil {
			return fmt.Errorf("%w: move takes two integer indices", errUsage)
		}
		if err := store.ReorderLayers(from, to); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown layer action %q", errUsage, action)
	}
	return a.save(store)
}

// parsePoint reads "x,y".
func parsePoint(s string) (domain.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Point{}, fmt.Errorf("point %q is not x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return domain.Point{X: x, Y: y}, nil
}

func (a *app) cmdStroke(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: stroke requires <dir> and at least one x,y point", errUsage)
	}
	store, err := a.open(args[0])
	if err != nil {
		return err
	}
	rest := args[1:]
	color, width := a.cfg.Stroke.Color, a.cfg.Stroke.Width
	if len(rest) > 0 && strings.HasPrefix(rest[0], "#") {
		color, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 && !strings.Contains(rest[0], ",") {
		w, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return fmt.Errorf("stroke width %q: %w", rest[0], err)
		}
		width, rest = w, rest[1:]
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: stroke requires at least one x,y point", errUsage)
	}
	pts := make([]domain.Point, 0, len(rest))
	for _, s := range rest {
		p, err := parsePoint(s)
		if err != nil {
			return err
		}
		pts = append(pts, p)
	}

	active, ok := store.ActiveLayer()
	switch {
	case !ok:
		return errors.New("no active layer; add one with: layer <dir> add")
	case active.Locked:
		return fmt.Errorf("active layer %q is locked", active.Name)
	}

	s := canvas.NewSession(store, a.log)
	if err := s.SetColor(color); err != nil {
		return err
	}
	if err := s.SetStrokeWidth(width); err != nil {
		return err
	}
	s.PointerDown(canvas.Pointer{ClientX: pts[0].X, ClientY: pts[0].Y})
	for _, p := range pts[1:] {
		s.PointerMove(canvas.Pointer{ClientX: p.X, ClientY: p.Y})
	}
	s.PointerUp()
	if err := a.save(store); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "Added %d-point stroke to %q\n", len(pts), active.Name)
	return nil
}

func (a *app) cmdErase(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: erase requires <dir> and x,y", errUsage)
	}
	store, err := a.open(args[0])
	if err != nil {
		return err
	}
	p, err := parsePoint(args[1])
	if err != nil {
		return err
	}
	s := canvas.NewSession(store, a.log)
	_, pathID, hit := s.HitTest(p)
	if !hit {
		_, _ = fmt.Fprintln(a.out, "Nothing to erase at", args[1])
		return nil
	}
	s.SetTool(canvas.ToolEraser)
	s.PointerDown(canvas.Pointer{ClientX: p.X, ClientY: p.Y})
	s.PointerUp()
	if err := a.save(store); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, "Erased path", pathID)
	return nil
}

func (a *app) cmdExport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: export requires <dir>", errUsage)
	}
	store, err := a.open(args[0])
	if err != nil {
		return err
	}
	format, stem := a.cfg.Export.Format, a.cfg.Export.Stem
	if len(args) > 1 {
		format = args[1]
	}
	if len(args) > 2 {
		stem = args[2]
	}
	outDir := a.cfg.Export.Dir
	if outDir == "" {
		outDir = a.handle.ExportsDir()
	}

	sink := export.DirSink{Dir: outDir}
	ex := export.NewExporter(sink, a.log)
	if hist, err := storage.OpenExportLog(a.handle.Root); err != nil {
		a.log.Warn("export history unavailable, exporting without it", slog.Any("err", err))
	} else {
		defer func() { _ = hist.Close() }()
		ex.Recorder = hist
	}
	ctx := applog.WithDrawing(context.Background(), a.handle.Root)
	d := a.handle.Document
	art, err := ex.Export(ctx, format, store.Layers(), stem, d.Width, d.Height)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "Exported %s (%d bytes)\n", sink.Path(art.Filename), len(art.Data))
	return nil
}

func (a *app) cmdHistory(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: history requires <dir>", errUsage)
	}
	limit := 20
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: limit must be an integer", errUsage)
		}
		limit = n
	}
	if _, err := a.open(args[0]); err != nil {
		return err
	}
	hist, err := storage.OpenExportLog(a.handle.Root)
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()
	recs, err := hist.ListExports(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(a.out, "No exports yet")
		return nil
	}
	for _, r := range recs {
		_, _ = fmt.Fprintf(a.out, "%s  %-4s %-30s %8d  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Format, r.Filename, r.Bytes, r.SHA256[:12])
	}
	return nil
}

func (a *app) cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: inspect requires <file.svg>", errUsage)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	sum, err := export.InspectSVG(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	_, _ = fmt.Fprintf(a.out, "%s: %gx%g, %d paths\n", filepath.Base(args[0]), sum.Width, sum.Height, sum.Paths)
	return nil
}
