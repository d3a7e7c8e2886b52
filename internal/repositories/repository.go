package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/tutoring-service/internal/utils"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// IsNotFoundError checks if err means the requested record is absent
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository groups the typed repositories built over one KVStore.
type Repository interface {
	User() UserRepository
	Availability() AvailabilityRepository
	Request() RequestRepository
	Review() ReviewRepository
	Notification() NotificationRepository
	Index() IndexRepository

	Ping(ctx context.Context) error
	Close() error
}

type kvRepository struct {
	store KVStore

	user         UserRepository
	availability AvailabilityRepository
	request      RequestRepository
	review       ReviewRepository
	notification NotificationRepository
	index        IndexRepository
}

// NewRepository builds the repository manager over store.
func NewRepository(store KVStore) Repository {
	index := &indexRepository{store: store, locks: utils.NewKeyedMutex()}
	return &kvRepository{
		store:        store,
		user:         &userRepository{store: store, index: index},
		availability: &availabilityRepository{store: store},
		request:      &requestRepository{store: store, index: index},
		review:       &reviewRepository{store: store},
		notification: &notificationRepository{store: store},
		index:        index,
	}
}

func (r *kvRepository) User() UserRepository                 { return r.user }
func (r *kvRepository) Availability() AvailabilityRepository { return r.availability }
func (r *kvRepository) Request() RequestRepository           { return r.request }
func (r *kvRepository) Review() ReviewRepository             { return r.review }
func (r *kvRepository) Notification() NotificationRepository { return r.notification }
func (r *kvRepository) Index() IndexRepository               { return r.index }

func (r *kvRepository) Ping(ctx context.Context) error { return r.store.Ping(ctx) }
func (r *kvRepository) Close() error                   { return r.store.Close() }
