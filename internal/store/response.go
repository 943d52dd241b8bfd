package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pathwise/tutorengine/internal/logger"
)

// QuestionResponse is one answered question as the rest of the engine sees
// it. The store appends these and serves ordered history back for the
// mastery-gate signals.
type QuestionResponse struct {
	StudentID string
	NodeCode  string
	SessionID string

	QuestionText string
	Options      []string
	CorrectIndex int
	ChosenIndex  int
	WasCorrect   bool
	ResponseMs   int

	Phase string

	AnsweredAt time.Time
}

// ResponseRepo is the append-only question response log.
type ResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// Append records one answered question. Rows are never updated or deleted
// outside of a full student reset.
func (r *ResponseRepo) Append(ctx context.Context, resp QuestionResponse) error {
	opts, err := json.Marshal(resp.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	row := questionResponseRow{
		StudentID:    resp.StudentID,
		NodeCode:     resp.NodeCode,
		SessionID:    resp.SessionID,
		QuestionText: resp.QuestionText,
		Options:      opts,
		CorrectIndex: resp.CorrectIndex,
		ChosenIndex:  resp.ChosenIndex,
		WasCorrect:   resp.WasCorrect,
		ResponseMs:   resp.ResponseMs,
		Phase:        resp.Phase,
		AnsweredAt:   resp.AnsweredAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	return nil
}

// RecentForNode returns the most recent limit responses for a (student,
// node) pair, newest first. The mastery gate reads its accuracy, speed and
// consistency signals from this window.
func (r *ResponseRepo) RecentForNode(ctx context.Context, studentID, nodeCode string, limit int) ([]QuestionResponse, error) {
	var rows []questionResponseRow
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND node_code = ?", studentID, nodeCode).
		Order("answered_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent responses: %w", err)
	}
	return responsesFromRows(rows)
}

// SessionsForNode returns the distinct session IDs a (student, node) pair
// has correct answers in, newest session first. The retention signal needs
// correctness spread over more than one session.
func (r *ResponseRepo) SessionsForNode(ctx context.Context, studentID, nodeCode string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&questionResponseRow{}).
		Where("student_id = ? AND node_code = ? AND was_correct = ?", studentID, nodeCode, true).
		Order("MAX(answered_at) DESC").
		Group("session_id").
		Pluck("session_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("sessions for node: %w", err)
	}
	return ids, nil
}

// CountForStudent returns total and correct response counts for reporting.
func (r *ResponseRepo) CountForStudent(ctx context.Context, studentID string) (total, correct int64, err error) {
	q := r.db.WithContext(ctx).Model(&questionResponseRow{}).Where("student_id = ?", studentID)
	if err = q.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("count responses: %w", err)
	}
	if err = q.Where("was_correct = ?", true).Count(&correct).Error; err != nil {
		return 0, 0, fmt.Errorf("count correct responses: %w", err)
	}
	return total, correct, nil
}

// DeleteForStudent removes all of a student's responses. Used by reset only.
func (r *ResponseRepo) DeleteForStudent(ctx context.Context, studentID string) error {
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&questionResponseRow{}).Error
	if err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	return nil
}

func responsesFromRows(rows []questionResponseRow) ([]QuestionResponse, error) {
	out := make([]QuestionResponse, 0, len(rows))
	for _, row := range rows {
		var opts []string
		if len(row.Options) > 0 {
			if err := json.Unmarshal(row.Options, &opts); err != nil {
				return nil, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		out = append(out, QuestionResponse{
			StudentID:    row.StudentID,
			NodeCode:     row.NodeCode,
			SessionID:    row.SessionID,
			QuestionText: row.QuestionText,
			Options:      opts,
			CorrectIndex: row.CorrectIndex,
			ChosenIndex:  row.ChosenIndex,
			WasCorrect:   row.WasCorrect,
			ResponseMs:   row.ResponseMs,
			Phase:        row.Phase,
			AnsweredAt:   row.AnsweredAt,
		})
	}
	return out, nil
}
