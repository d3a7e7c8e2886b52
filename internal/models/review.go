package models

import "time"

type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationDelete  ModerationAction = "delete"
)

type Review struct {
	ID         string     `json:"id"`
	TutorID    string     `json:"tutor_id"`
	StudentID  string     `json:"student_id"`
	ReviewerID string     `json:"reviewer_id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	RequestID  string     `json:"request_id"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ByStudent reports whether the student wrote the review about the tutor.
func (r *Review) ByStudent() bool { return r.ReviewerID == r.StudentID }

// ByTutor reports whether the tutor wrote the review about the student.
func (r *Review) ByTutor() bool { return r.ReviewerID == r.TutorID }

// SubjectID is the reviewed party, the one credited by an approved review.
func (r *Review) SubjectID() string {
	if r.ByStudent() {
		return r.TutorID
	}
	return r.StudentID
}

type ReviewView struct {
	Review
	StudentName string `json:"student_name,omitempty"`
	TutorName   string `json:"tutor_name,omitempty"`
}
