package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.UserProfile, error)
	Save(ctx context.Context, user *models.UserProfile) error
	// List scans every profile, optionally restricted to role, newest first.
	List(ctx context.Context, role *models.UserRole) ([]*models.UserProfile, error)

	GetCredential(ctx context.Context, email string) (*models.Credential, error)
	// CreateCredential fails with ErrAlreadyExists when email is registered.
	CreateCredential(ctx context.Context, cred *models.Credential) error
	DeleteCredential(ctx context.Context, email string) error
}

type userRepository struct {
	store KVStore
	index *indexRepository
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := getJSON(ctx, r.store, UserKey(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs resolves ids in order, skipping ids whose record is gone.
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.UserProfile, error) {
	users := make([]*models.UserProfile, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			if IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.UserProfile) error {
	return setJSON(ctx, r.store, UserKey(user.ID), user)
}

func (r *userRepository) List(ctx context.Context, role *models.UserRole) ([]*models.UserProfile, error) {
	var users []*models.UserProfile
	err := scanJSON(ctx, r.store, PrefixUser, func(raw []byte) error {
		var user models.UserProfile
		if err := json.Unmarshal(raw, &user); err != nil {
			return err
		}
		if role == nil || user.Role == *role {
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) GetCredential(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	if err := getJSON(ctx, r.store, CredentialKey(normalizeEmail(email)), &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *userRepository) CreateCredential(ctx context.Context, cred *models.Credential) error {
	key := CredentialKey(normalizeEmail(cred.Email))

	// Same lock family as the id indexes, keyed by credential key.
	unlock := r.index.locks.Lock(key)
	defer unlock()

	var existing models.Credential
	err := getJSON(ctx, r.store, key, &existing)
	if err == nil {
		return ErrAlreadyExists
	}
	if !IsNotFoundError(err) {
		return err
	}
	return setJSON(ctx, r.store, key, cred)
}

func (r *userRepository) DeleteCredential(ctx context.Context, email string) error {
	key := CredentialKey(normalizeEmail(email))
	unlock := r.index.locks.Lock(key)
	defer unlock()
	return r.store.Delete(ctx, key)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
