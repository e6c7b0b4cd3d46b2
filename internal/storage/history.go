/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"layerdraw/internal/domain"
	"layerdraw/internal/export"
	applog "layerdraw/internal/log"
)

// ExportRecord is one row of the export history.
type ExportRecord struct {
	ID        int64
	Format    domain.Format
	Filename  string
	MediaType string
	Bytes     int64
	SHA256    string
	CreatedAt time.Time
}

// ExportLog records delivered exports in the drawing's index. It satisfies export.Recorder.
type ExportLog struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

var _ export.Recorder = (*ExportLog)(nil)

// OpenExportLog opens (creating if needed) the index of the drawing at root.
// An index that cannot be opened is rebuilt once; its history is lost.
func OpenExportLog(root string) (*ExportLog, error) {
	l := applog.WithComponent("storage").With(slog.String("root", root))
	db, err := InitOrOpenIndex(root)
	if err != nil {
		rebuilt, rerr := DetectAndRebuildIndex(context.Background(), root)
		if rerr != nil {
			return nil, fmt.Errorf("open export log: %w (rebuild: %v)", err, rerr)
		}
		l.Warn("export index rebuilt", slog.Bool("rebuilt", rebuilt), slog.Any("err", err))
		if db, err = InitOrOpenIndex(root); err != nil {
			return nil, fmt.Errorf("open export log: %w", err)
		}
	}
	return &ExportLog{
		db:  db,
		log: l,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (e *ExportLog) Close() error { return e.db.Close() }

// RecordExport stores the artifact's metadata and content hash. The bytes themselves are not kept.
func (e *ExportLog) RecordExport(ctx context.Context, a export.Artifact) error {
	sum := sha256.Sum256(a.Data)
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO exports (format, filename, media_type, bytes, sha256, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(a.Format), a.Filename, a.MediaType, len(a.Data), hex.EncodeToString(sum[:]), e.now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	e.log.Debug("export recorded", slog.String("file", a.Filename))
	return nil
}

// ListExports returns up to limit records, newest first. A non-positive limit returns all.
func (e *ExportLog) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	q := `SELECT id, format, filename, media_type, bytes, sha256, created_at FROM exports ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()
	var out []ExportRecord
	for rows.Next() {
		var (
			r       ExportRecord
			format  string
			created string
		)
		if err := rows.Scan(&r.ID, &format, &r.Filename, &r.MediaType, &r.Bytes, &r.SHA256, &created); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		r.Format = domain.Format(format)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
