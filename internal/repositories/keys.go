package repositories

import "github.com/SAP-F-2025/tutoring-service/internal/models"

// Key families of the store namespace.
const (
	PrefixUser         = "user:"
	PrefixCredential   = "credential:"
	PrefixAvailability = "availability:"
	PrefixRequest      = "request:"
	PrefixReview       = "review:"
	PrefixNotification = "notifications:"

	KeyPendingReviews = "reviews:pending"
	KeyPendingTutors  = "tutors:pending"
	KeyApprovedTutors = "tutors:approved"
)

func UserKey(id string) string { return PrefixUser + id }
func CredentialKey(email string) string { return PrefixCredential + email }
func RequestKey(id string) string { return PrefixRequest + id }
func ReviewKey(id string) string { return PrefixReview + id }
func NotificationsKey(userID string) string { return PrefixNotification + userID }

func AvailabilityKey(tutorID string, day models.Weekday) string {
	return PrefixAvailability + tutorID + ":" + string(day)
}

func StudentRequestsKey(studentID string) string { return "requests:student:" + studentID }
func TutorRequestsKey(tutorID string) string { return "requests:tutor:" + tutorID }
