package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/tracing"
)

// MasteryScoreRepo persists tracing.MasteryScore records, one row per
// (student, node) pair.
type MasteryScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// Get returns the score for a (student, node) pair or ErrNotFound.
func (r *MasteryScoreRepo) Get(ctx context.Context, studentID, nodeCode string) (*tracing.MasteryScore, error) {
	var row masteryScoreRow
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND node_code = ?", studentID, nodeCode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery score: %w", err)
	}
	return scoreFromRow(row), nil
}

// GetOrCreate returns the existing score or lazily initializes a fresh one.
// The fresh score is persisted immediately so concurrent readers agree.
func (r *MasteryScoreRepo) GetOrCreate(ctx context.Context, studentID, nodeCode string) (*tracing.MasteryScore, error) {
	s, err := r.Get(ctx, studentID, nodeCode)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	s = tracing.NewScore(studentID, nodeCode)
	if err := r.Upsert(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert writes the score atomically, inserting or updating on the
// (student_id, node_code) unique index in one statement.
func (r *MasteryScoreRepo) Upsert(ctx context.Context, s *tracing.MasteryScore) error {
	row := rowFromScore(s)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "node_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"probability", "practice_count", "correct_count",
				"last_practiced_at", "best_response_ms",
				"review_count", "interval_days", "easiness", "next_due_at",
				"fluency_drill_active", "truly_mastered", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert mastery score: %w", err)
	}
	return nil
}

// AllForStudent returns every score the student has, keyed by node code.
func (r *MasteryScoreRepo) AllForStudent(ctx context.Context, studentID string) (map[string]*tracing.MasteryScore, error) {
	var rows []masteryScoreRow
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list mastery scores: %w", err)
	}

	scores := make(map[string]*tracing.MasteryScore, len(rows))
	for _, row := range rows {
		scores[row.NodeCode] = scoreFromRow(row)
	}
	return scores, nil
}

// DeleteForStudent removes all of a student's scores. Used by reset only.
func (r *MasteryScoreRepo) DeleteForStudent(ctx context.Context, studentID string) error {
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&masteryScoreRow{}).Error
	if err != nil {
		return fmt.Errorf("delete mastery scores: %w", err)
	}
	return nil
}

func scoreFromRow(row masteryScoreRow) *tracing.MasteryScore {
	return &tracing.MasteryScore{
		StudentID:          row.StudentID,
		NodeCode:           row.NodeCode,
		Probability:        row.Probability,
		PracticeCount:      row.PracticeCount,
		CorrectCount:       row.CorrectCount,
		LastPracticedAt:    row.LastPracticedAt,
		BestResponseMs:     row.BestResponseMs,
		ReviewCount:        row.ReviewCount,
		IntervalDays:       row.IntervalDays,
		Easiness:           row.Easiness,
		NextDueAt:          row.NextDueAt,
		FluencyDrillActive: row.FluencyDrillActive,
		TrulyMastered:      row.TrulyMastered,
	}
}

func rowFromScore(s *tracing.MasteryScore) masteryScoreRow {
	return masteryScoreRow{
		StudentID:          s.StudentID,
		NodeCode:           s.NodeCode,
		Probability:        s.Probability,
		PracticeCount:      s.PracticeCount,
		CorrectCount:       s.CorrectCount,
		LastPracticedAt:    s.LastPracticedAt,
		BestResponseMs:     s.BestResponseMs,
		ReviewCount:        s.ReviewCount,
		IntervalDays:       s.IntervalDays,
		Easiness:           s.Easiness,
		NextDueAt:          s.NextDueAt,
		FluencyDrillActive: s.FluencyDrillActive,
		TrulyMastered:      s.TrulyMastered,
	}
}
