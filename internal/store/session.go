package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pathwise/tutorengine/internal/logger"
)

// LearningSessionRecord is one session's lifecycle as persisted for
// reporting. It is written at session start and updated as the session
// progresses and ends.
type LearningSessionRecord struct {
	ID        string
	StudentID string

	Kind  string
	State string

	NodeCode      string
	QuestionCount int
	CorrectCount  int

	StartedAt time.Time
	EndedAt   time.Time
}

// SessionRepo persists learning session records.
type SessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// Save inserts or updates a session record by its ID.
func (r *SessionRepo) Save(ctx context.Context, rec LearningSessionRecord) error {
	row := learningSessionRow{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		Kind:          rec.Kind,
		State:         rec.State,
		NodeCode:      rec.NodeCode,
		QuestionCount: rec.QuestionCount,
		CorrectCount:  rec.CorrectCount,
		StartedAt:     rec.StartedAt,
		EndedAt:       rec.EndedAt,
	}
	err := r.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns one session record by ID or ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (LearningSessionRecord, error) {
	var row learningSessionRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LearningSessionRecord{}, ErrNotFound
	}
	if err != nil {
		return LearningSessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return recordFromRow(row), nil
}

// RecentForStudent lists the student's most recent sessions, newest first.
func (r *SessionRepo) RecentForStudent(ctx context.Context, studentID string, limit int) ([]LearningSessionRecord, error) {
	var rows []learningSessionRow
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	out := make([]LearningSessionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

// DeleteForStudent removes all of a student's sessions. Used by reset only.
func (r *SessionRepo) DeleteForStudent(ctx context.Context, studentID string) error {
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&learningSessionRow{}).Error
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func recordFromRow(row learningSessionRow) LearningSessionRecord {
	return LearningSessionRecord{
		ID:            row.ID,
		StudentID:     row.StudentID,
		Kind:          row.Kind,
		State:         row.State,
		NodeCode:      row.NodeCode,
		QuestionCount: row.QuestionCount,
		CorrectCount:  row.CorrectCount,
		StartedAt:     row.StartedAt,
		EndedAt:       row.EndedAt,
	}
}
