package events

import (
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/google/uuid"
)

const (
	eventSource  = "tutoring-service"
	eventVersion = "1.0"
)

// EventType represents the kinds of domain events the service emits
type EventType string

const (
	// Request lifecycle events
	EventRequestCreated   EventType = "request.created"
	EventRequestAccepted  EventType = "request.accepted"
	EventRequestRejected  EventType = "request.rejected"
	EventRequestCancelled EventType = "request.cancelled"
	EventRequestCompleted EventType = "request.completed"

	// Moderation events
	EventReviewApproved EventType = "review.approved"
	EventReviewDeleted  EventType = "review.deleted"
	EventTutorApproval  EventType = "tutor.approval"

	EventNotificationCreated EventType = "notification.created"
)

// Event is the envelope shared by every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type RequestEvent struct {
	RequestID string               `json:"request_id"`
	StudentID string               `json:"student_id"`
	TutorID   string               `json:"tutor_id"`
	Subject   string               `json:"subject"`
	Date      models.Weekday       `json:"date"`
	Time      string               `json:"time"`
	Status    models.RequestStatus `json:"status"`
	ActorID   string               `json:"actor_id"`
}

type ReviewModeratedEvent struct {
	ReviewID   string `json:"review_id"`
	TutorID    string `json:"tutor_id"`
	StudentID  string `json:"student_id"`
	SubjectID  string `json:"subject_id"`
	Rating     int    `json:"rating"`
	WasCounted bool   `json:"was_counted"`
}

type TutorApprovalEvent struct {
	TutorID  string `json:"tutor_id"`
	Approved bool   `json:"approved"`
	AdminID  string `json:"admin_id"`
}

type NotificationCreatedEvent struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// RequestEventType maps a request status to the event announcing it
func RequestEventType(status models.RequestStatus) EventType {
	switch status {
	case models.RequestAccepted:
		return EventRequestAccepted
	case models.RequestRejected:
		return EventRequestRejected
	case models.RequestCancelled:
		return EventRequestCancelled
	case models.RequestCompleted:
		return EventRequestCompleted
	default:
		return EventRequestCreated
	}
}

func NewRequestEvent(req *models.TutoringRequest, actorID string) *Event {
	return NewEvent(RequestEventType(req.Status), RequestEvent{
		RequestID: req.ID,
		StudentID: req.StudentID,
		TutorID:   req.TutorID,
		Subject:   req.Subject,
		Date:      req.Date,
		Time:      req.Time,
		Status:    req.Status,
		ActorID:   actorID,
	})
}

func NewReviewModeratedEvent(review *models.Review, action models.ModerationAction, wasCounted bool) *Event {
	eventType := EventReviewApproved
	if action == models.ModerationDelete {
		eventType = EventReviewDeleted
	}
	return NewEvent(eventType, ReviewModeratedEvent{
		ReviewID:   review.ID,
		TutorID:    review.TutorID,
		StudentID:  review.StudentID,
		SubjectID:  review.SubjectID(),
		Rating:     review.Rating,
		WasCounted: wasCounted,
	})
}

func NewTutorApprovalEvent(tutorID string, approved bool, adminID string) *Event {
	return NewEvent(EventTutorApproval, TutorApprovalEvent{
		TutorID:  tutorID,
		Approved: approved,
		AdminID:  adminID,
	})
}

func NewNotificationCreatedEvent(userID string, n models.Notification) *Event {
	return NewEvent(EventNotificationCreated, NotificationCreatedEvent{
		UserID:         userID,
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
	})
}
