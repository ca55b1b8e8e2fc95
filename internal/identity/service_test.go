package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/identra/identra/internal/provider"
)

func TestRegisterEmailAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "test@x.com", "pw123", "Test User", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.KYCStatus != KYCUnverified {
		t.Fatalf("expected unverified, got %s", user.KYCStatus)
	}
	if user.Email != "test@x.com" || user.Phone != "" {
		t.Fatalf("expected email identity, got email=%q phone=%q", user.Email, user.Phone)
	}
	if len(user.PasswordHash) == 0 {
		t.Fatal("expected password hash to be set")
	}

	authed, err := svc.Authenticate(ctx, "test@x.com", "pw123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, "test@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@x.com", "pw123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterPhoneIdentifier(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "0812345678", "pw123", "", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Phone != "0812345678" || user.Email != "" {
		t.Fatalf("expected phone identity, got email=%q phone=%q", user.Email, user.Phone)
	}

	if _, err := svc.Register(ctx, "0812345678", "other", "", ""); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRegisterRejectsMalformedIdentifier(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	for _, identifier := range []string{"", "abc123", "081234567", "08123456789", "081234567a"} {
		if _, err := svc.Register(ctx, identifier, "pw123", "", ""); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("identifier %q: expected ErrInvalidFormat, got %v", identifier, err)
		}
	}
}

func TestRegisterNormalizesCountryCode(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, "member@x.com", "pw123", "", "+66812345678")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Phone != "0812345678" {
		t.Fatalf("expected normalized phone 0812345678, got %q", user.Phone)
	}
	// The verified phone is the sole contact key; the email identifier is
	// not stored alongside it.
	if user.Email != "" {
		t.Fatalf("expected a single contact key, got email=%q phone=%q", user.Email, user.Phone)
	}
}

func TestRegisterKeepsSingleContactKey(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "solo@x.com", "pw123", "", "0899999999")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "" || user.Phone != "0899999999" {
		t.Fatalf("expected phone-only record, got email=%q phone=%q", user.Email, user.Phone)
	}
	if _, err := repo.FindByKey(ctx, KeyEmail, "solo@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no email index entry, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "0899999999", "pw123"); err != nil {
		t.Fatalf("authenticate by phone: %v", err)
	}
}

func TestAuthenticateProviderOnlyAccount(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.ResolveProvider(ctx, provider.Profile{
		Provider: provider.Google, SubjectID: "g-1", Email: "social@x.com", DisplayName: "Social",
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "social@x.com", "pw123"); !errors.Is(err, ErrWrongMethod) {
		t.Fatalf("expected ErrWrongMethod, got %v", err)
	}
}

func TestResolveProviderIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	profile := provider.Profile{
		Provider:    provider.Line,
		SubjectID:   "line-42",
		DisplayName: "First Seen",
		AvatarURL:   "https://cdn.example/p.jpg",
	}
	first, err := svc.ResolveProvider(ctx, profile)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.LineID != "line-42" || first.KYCStatus != KYCUnverified {
		t.Fatalf("unexpected user: %+v", first)
	}

	// Repeat logins return the same record and never mutate it.
	profile.DisplayName = "Renamed Upstream"
	second, err := svc.ResolveProvider(ctx, profile)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same user, got %s and %s", first.ID, second.ID)
	}
	if second.DisplayName != "First Seen" {
		t.Fatalf("expected first-seen profile to win, got %q", second.DisplayName)
	}
}

func TestResolveProviderToleratesMissingOptionalFields(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	user, err := svc.ResolveProvider(context.Background(), provider.Profile{
		Provider: provider.Facebook, SubjectID: "fb-7", DisplayName: "No Email",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Email != "" {
		t.Fatalf("expected empty email, got %q", user.Email)
	}
	if user.AvatarRef == "" {
		t.Fatal("expected default avatar reference")
	}
}

// conflictRepo loses every insert race: the first Insert reports a duplicate
// and the record appears in the backing store as if a concurrent login won.
type conflictRepo struct {
	Repository
	winner User
}

func (r *conflictRepo) FindByKey(ctx context.Context, key KeyType, value string) (User, error) {
	if r.winner.ID != "" {
		return r.winner, nil
	}
	return User{}, ErrNotFound
}

func (r *conflictRepo) Insert(_ context.Context, user User) error {
	r.winner = user
	r.winner.ID = "winner-id"
	return ErrDuplicateIdentity
}

func TestResolveProviderLostRaceReturnsWinner(t *testing.T) {
	repo := &conflictRepo{Repository: NewMemoryRepository()}
	svc := NewService(repo)

	user, err := svc.ResolveProvider(context.Background(), provider.Profile{
		Provider: provider.Google, SubjectID: "g-race",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "winner-id" {
		t.Fatalf("expected the race winner's record, got %q", user.ID)
	}
}
