package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User               // by id
	keys  map[KeyType]map[string]string // key value -> user id
}

// NewMemoryRepository builds an in-memory user store for tests and local
// development. It mirrors the Postgres unique-index behavior: inserting a
// claimed identity key fails with ErrDuplicateIdentity.
func NewMemoryRepository() Repository {
	keys := make(map[KeyType]map[string]string, len(keyColumns))
	for key := range keyColumns {
		keys[key] = make(map[string]string)
	}
	return &memoryRepository{users: make(map[string]User), keys: keys}
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByKey(_ context.Context, key KeyType, value string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.keys[key]
	if !ok || value == "" {
		return User{}, ErrNotFound
	}
	id, ok := index[value]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *memoryRepository) Insert(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	claims := r.identityKeys(user)
	for key, value := range claims {
		if _, taken := r.keys[key][value]; taken {
			return ErrDuplicateIdentity
		}
	}
	r.users[user.ID] = user
	for key, value := range claims {
		r.keys[key][value] = user.ID
	}
	return nil
}

func (r *memoryRepository) UpdateKYC(_ context.Context, id, idDocumentRef, facePhotoRef string, status KYCStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if user.KYCStatus == KYCVerified {
		return nil
	}
	user.IDDocumentRef = idDocumentRef
	user.FacePhotoRef = facePhotoRef
	user.KYCStatus = status
	r.users[id] = user
	return nil
}

func (r *memoryRepository) identityKeys(user User) map[KeyType]string {
	claims := make(map[KeyType]string)
	for key, value := range map[KeyType]string{
		KeyGoogleID:   user.GoogleID,
		KeyFacebookID: user.FacebookID,
		KeyLineID:     user.LineID,
		KeyEmail:      user.Email,
		KeyPhone:      user.Phone,
	} {
		if value != "" {
			claims[key] = value
		}
	}
	return claims
}
