package models

import (
	"time"
)

// MaxNotificationsPerUser bounds the stored list; older entries are dropped.
const MaxNotificationsPerUser = 50

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification titles written by the core.
const (
	TitleNewRequest       = "New tutoring request"
	TitleRequestAccepted  = "Request accepted"
	TitleRequestRejected  = "Request rejected"
	TitleRequestCancelled = "Tutoring cancelled"
	TitleTutorApproved    = "Application approved"
	TitleTutorRejected    = "Application rejected"
	TitleReviewPublished  = "New review published"
)
