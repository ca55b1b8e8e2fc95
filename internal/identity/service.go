package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/provider"
)

const (
	minPasswordLen   = 4
	phoneDigits      = 10
	defaultAvatarRef = "/static/default-avatar.png"
)

// Service resolves federated profiles and local credentials into canonical
// user records.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveProvider finds or creates the user for a federated profile. An
// existing record is returned unchanged; the first-seen profile wins and
// repeat logins never overwrite it. Losing a concurrent first login resolves
// to the winner's record.
func (s *Service) ResolveProvider(ctx context.Context, p provider.Profile) (User, error) {
	key, err := providerKey(p.Provider)
	if err != nil {
		return User{}, err
	}
	if p.SubjectID == "" {
		return User{}, fmt.Errorf("%s profile has no subject id", p.Provider)
	}

	user, err := s.repo.FindByKey(ctx, key, p.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup %s subject: %w", p.Provider, err)
	}

	user = User{
		ID:          uuid.NewString(),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		AvatarRef:   p.AvatarURL,
		KYCStatus:   KYCUnverified,
		CreatedAt:   time.Now().UTC(),
	}
	if user.AvatarRef == "" {
		user.AvatarRef = defaultAvatarRef
	}
	switch key {
	case KeyGoogleID:
		user.GoogleID = p.SubjectID
	case KeyFacebookID:
		user.FacebookID = p.SubjectID
	case KeyLineID:
		user.LineID = p.SubjectID
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			// A concurrent first login won the insert; its record is the
			// canonical one.
			if winner, lerr := s.repo.FindByKey(ctx, key, p.SubjectID); lerr == nil {
				return winner, nil
			}
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create %s user: %w", p.Provider, err)
	}
	return user, nil
}

// Register creates a local-credential account. The identifier is an email
// when it contains "@", a phone when it is exactly 10 digits, and invalid
// otherwise. A separately verified phone (if supplied) has its country-code
// prefix normalized to the local leading zero and becomes the record's sole
// contact key, replacing an email identifier. A user carries at most one of
// email or phone.
func (s *Service) Register(ctx context.Context, identifier, password, displayName, phone string) (User, error) {
	email, phoneNumber, err := splitIdentifier(identifier)
	if err != nil {
		return User{}, err
	}
	if phone != "" {
		phoneNumber, err = NormalizePhone(phone)
		if err != nil {
			return User{}, err
		}
		email = ""
	}
	if len(password) < minPasswordLen {
		return User{}, ErrPasswordTooShort
	}

	// Friendly pre-check; the unique index on insert is authoritative.
	if email != "" {
		if _, err := s.repo.FindByKey(ctx, KeyEmail, email); err == nil {
			return User{}, ErrDuplicateIdentity
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("check email: %w", err)
		}
	}
	if phoneNumber != "" {
		if _, err := s.repo.FindByKey(ctx, KeyPhone, phoneNumber); err == nil {
			return User{}, ErrDuplicateIdentity
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("check phone: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phoneNumber,
		DisplayName:  displayName,
		AvatarRef:    defaultAvatarRef,
		PasswordHash: hash,
		KYCStatus:    KYCUnverified,
		CreatedAt:    time.Now().UTC(),
	}
	if user.DisplayName == "" {
		user.DisplayName = identifier
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return User{}, ErrDuplicateIdentity
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies a local login against the matching email or phone
// record.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	key := KeyEmail
	if !strings.Contains(identifier, "@") {
		key = KeyPhone
	}

	user, err := s.repo.FindByKey(ctx, key, identifier)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if len(user.PasswordHash) == 0 {
		return User{}, ErrWrongMethod
	}
	if !CheckPassword(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID loads the current record for an authenticated principal.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func providerKey(name provider.Name) (KeyType, error) {
	switch name {
	case provider.Google:
		return KeyGoogleID, nil
	case provider.Facebook:
		return KeyFacebookID, nil
	case provider.Line:
		return KeyLineID, nil
	default:
		return "", fmt.Errorf("unknown provider %q", name)
	}
}

// splitIdentifier applies the registration disambiguation rule: "@" marks an
// email, exactly 10 digits marks a phone, anything else is rejected.
func splitIdentifier(identifier string) (email, phone string, err error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", "", ErrInvalidFormat
	}
	if strings.Contains(identifier, "@") {
		return identifier, "", nil
	}
	if len(identifier) == phoneDigits && allDigits(identifier) {
		return "", identifier, nil
	}
	return "", "", ErrInvalidFormat
}

// NormalizePhone rewrites a +66/66 country prefix to the local leading zero
// and validates the result is a 10-digit number.
func NormalizePhone(phone string) (string, error) {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-':
			return -1
		}
		return r
	}, phone)
	switch {
	case strings.HasPrefix(phone, "+66"):
		phone = "0" + phone[3:]
	case strings.HasPrefix(phone, "66") && len(phone) == phoneDigits+1:
		phone = "0" + phone[2:]
	}
	if len(phone) != phoneDigits || !allDigits(phone) {
		return "", ErrInvalidFormat
	}
	return phone, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
