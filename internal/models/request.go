package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestCompleted || s == RequestCancelled
}

type TutoringRequest struct {
	ID                 string        `json:"id"`
	StudentID          string        `json:"student_id"`
	TutorID            string        `json:"tutor_id"`
	Subject            string        `json:"subject"`
	Date               Weekday       `json:"date"`
	Time               string        `json:"time"`
	Message            string        `json:"message"`
	Status             RequestStatus `json:"status"`
	ConfirmedByStudent bool          `json:"confirmed_by_student"`
	ConfirmedByTutor   bool          `json:"confirmed_by_tutor"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Participant reports whether userID is the student or tutor of the request.
func (r *TutoringRequest) Participant(userID string) bool {
	return userID == r.StudentID || userID == r.TutorID
}

// OtherParties returns the participants other than userID: the counterpart
// for a participant, both student and tutor for anyone else.
func (r *TutoringRequest) OtherParties(userID string) []string {
	switch userID {
	case r.StudentID:
		return []string{r.TutorID}
	case r.TutorID:
		return []string{r.StudentID}
	}
	return []string{r.StudentID, r.TutorID}
}

// RequestView is a request enriched with participant display names.
type RequestView struct {
	TutoringRequest
	StudentName string `json:"student_name,omitempty"`
	TutorName   string `json:"tutor_name,omitempty"`
}
