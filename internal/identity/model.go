package identity

import "time"

// KYCStatus tracks how far a user has progressed through identity
// verification. Transitions only move forward.
type KYCStatus string

const (
	KYCUnverified KYCStatus = "unverified"
	KYCPending    KYCStatus = "pending"
	KYCVerified   KYCStatus = "verified"
)

// KeyType names the columns a user can be uniquely looked up by.
type KeyType string

const (
	KeyGoogleID   KeyType = "google_id"
	KeyFacebookID KeyType = "facebook_id"
	KeyLineID     KeyType = "line_id"
	KeyEmail      KeyType = "email"
	KeyPhone      KeyType = "phone"
)

// User is the canonical identity record. Identity keys use the empty string
// for absent values; the store enforces uniqueness of every non-empty key.
// A reachable account carries at least one provider id or a password hash.
type User struct {
	ID            string
	GoogleID      string
	FacebookID    string
	LineID        string
	Email         string
	Phone         string
	DisplayName   string
	AvatarRef     string
	PasswordHash  []byte
	KYCStatus     KYCStatus
	IDDocumentRef string
	FacePhotoRef  string
	CreatedAt     time.Time
}

// Verified reports whether the user has completed KYC.
func (u User) Verified() bool {
	return u.KYCStatus == KYCVerified
}
