package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptFields = []string{
	"sequence", "session_id", "username", "kind", "title", "class",
	"subject_codes", "exam_id", "total", "correct", "percentage", "passed",
	"time_taken", "elapsed_seconds", "completed_at",
}

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) Save(ctx context.Context, a Attempt) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now()
	}

	query, args := builder().Insert(AttemptsTable.Name).
		Columns(attemptFields...).
		Values(seqNum, a.SessionID, a.Username, a.Kind, a.Title, a.Class,
			a.SubjectCodes, a.ExamID, a.Total, a.Correct, a.Percentage, a.Passed,
			a.TimeTaken, a.ElapsedSeconds, a.CompletedAt.UnixMilli()).
		OnConflict(entsql.ConflictColumns("session_id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) List(ctx context.Context, limit int) ([]Attempt, error) {
	sel := builder().
		Select(attemptFields...).
		From(builder().Table(AttemptsTable.Name)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a         Attempt
			completed int64
		)
		if err := rows.Scan(&a.Sequence, &a.SessionID, &a.Username, &a.Kind, &a.Title,
			&a.Class, &a.SubjectCodes, &a.ExamID, &a.Total, &a.Correct, &a.Percentage,
			&a.Passed, &a.TimeTaken, &a.ElapsedSeconds, &completed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.CompletedAt = time.UnixMilli(completed)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Stats(ctx context.Context) (AttemptStats, error) {
	attempts, err := r.List(ctx, 0)
	if err != nil {
		return AttemptStats{}, err
	}

	var st AttemptStats
	var sum float64
	for _, a := range attempts {
		st.Attempts++
		if a.Passed {
			st.Passed++
		}
		sum += a.Percentage
		if a.Percentage > st.BestPercentage {
			st.BestPercentage = a.Percentage
		}
		st.TotalSeconds += a.ElapsedSeconds
		st.Questions += a.Total
		st.CorrectAnswers += a.Correct
	}
	if st.Attempts > 0 {
		st.AveragePercentage = sum / float64(st.Attempts)
	}
	return st, nil
}
