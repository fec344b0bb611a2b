package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Op names a recorded operation.
type Op string

const (
	OpAppend   Op = "append"
	OpDelete   Op = "delete"
	OpSort     Op = "sort"
	OpGenerate Op = "generate"
)

// Entry is one recorded operation.
type Entry struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Op         Op        `json:"op"`
	Scenes     []string  `json:"scenes"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Record inserts e and returns it with ID, Seq and RecordedAt filled in.
// A caller-supplied ID is kept.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = j.ids.Generate()
	}
	e.RecordedAt = j.now().UTC()
	if e.Scenes == nil {
		e.Scenes = []string{}
	}

	scenesJSON, err := json.Marshal(e.Scenes)
	if err != nil {
		return Entry{}, fmt.Errorf("record operation: %w", err)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO operations (id, op, scenes, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.ID,
		string(e.Op),
		string(scenesJSON),
		e.Detail,
		e.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record operation: %w", err)
	}

	e.Seq, err = res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("record operation: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
//
// Returns an empty slice (not nil) when nothing has been recorded.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, op, scenes, detail, recorded_at
		FROM operations
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			op         string
			scenesJSON string
			recordedAt string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &op, &scenesJSON, &e.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		e.Op = Op(op)
		if err := json.Unmarshal([]byte(scenesJSON), &e.Scenes); err != nil {
			return nil, fmt.Errorf("decode scenes of %s: %w", e.ID, err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("decode recorded_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return entries, nil
}
