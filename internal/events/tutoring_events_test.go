package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEventType(t *testing.T) {
	tests := map[models.RequestStatus]EventType{
		models.RequestPending:   EventRequestCreated,
		models.RequestAccepted:  EventRequestAccepted,
		models.RequestRejected:  EventRequestRejected,
		models.RequestCancelled: EventRequestCancelled,
		models.RequestCompleted: EventRequestCompleted,
	}
	for status, want := range tests {
		assert.Equal(t, want, RequestEventType(status), status)
	}
}

func TestNewReviewModeratedEvent(t *testing.T) {
	review := &models.Review{ID: "r1", TutorID: "t1", StudentID: "s1", ReviewerID: "s1", Rating: 4}

	approved := NewReviewModeratedEvent(review, models.ModerationApprove, true)
	assert.Equal(t, EventReviewApproved, approved.Type)
	assert.NotEmpty(t, approved.ID)
	assert.Equal(t, eventSource, approved.Source)

	data, ok := approved.Data.(ReviewModeratedEvent)
	require.True(t, ok)
	assert.Equal(t, "t1", data.SubjectID)
	assert.True(t, data.WasCounted)

	deleted := NewReviewModeratedEvent(review, models.ModerationDelete, false)
	assert.Equal(t, EventReviewDeleted, deleted.Type)
	assert.NotEqual(t, approved.ID, deleted.ID)
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, NewTutorApprovalEvent("t1", true, "admin")))
	require.NoError(t, publisher.Publish(ctx, NewNotificationCreatedEvent("t1", models.Notification{ID: "n1", Title: "x"})))

	assert.Len(t, publisher.GetPublishedEvents(), 2)
	assert.Len(t, publisher.EventsOfType(EventTutorApproval), 1)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
	assert.NoError(t, publisher.Close())
}
