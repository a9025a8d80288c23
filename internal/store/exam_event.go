package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type examEventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *examEventRepo) Append(ctx context.Context, rec ExamEventRecord) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	payload := string(rec.Payload)
	if payload == "" {
		payload = "{}"
	}

	query, args := builder().Insert(ExamEventsTable.Name).
		Columns("sequence", "session_id", "type", "username", "payload", "created_at").
		Values(seqNum, rec.SessionID, rec.Type, rec.Username, payload, rec.CreatedAt.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save exam event: %w", err)
	}
	return seqNum, nil
}

func (r *examEventRepo) Query(ctx context.Context, opts QueryOpts) ([]ExamEventRecord, error) {
	sel := builder().
		Select("sequence", "session_id", "type", "username", "payload", "created_at").
		From(builder().Table(ExamEventsTable.Name))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	sel.OrderBy(entsql.Asc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exam events: %w", err)
	}
	defer rows.Close()

	var out []ExamEventRecord
	for rows.Next() {
		var (
			rec     ExamEventRecord
			payload string
			created int64
		)
		if err := rows.Scan(&rec.Sequence, &rec.SessionID, &rec.Type, &rec.Username, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan exam event: %w", err)
		}
		rec.Payload = []byte(payload)
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
