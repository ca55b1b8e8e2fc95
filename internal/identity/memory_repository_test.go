package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryRepositoryUniqueKeys(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	base := User{ID: uuid.NewString(), Email: "a@x.com", KYCStatus: KYCUnverified, CreatedAt: time.Now().UTC()}
	if err := repo.Insert(ctx, base); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := User{ID: uuid.NewString(), Email: "a@x.com"}
	if err := repo.Insert(ctx, dup); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	if _, err := repo.FindByID(ctx, dup.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("losing insert must not be stored, got %v", err)
	}
}

func TestMemoryRepositoryConcurrentInsertSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := User{ID: uuid.NewString(), GoogleID: "g-sub-1", KYCStatus: KYCUnverified}
			if err := repo.Insert(ctx, user); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winning insert, got %d", wins.Load())
	}
	if _, err := repo.FindByKey(ctx, KeyGoogleID, "g-sub-1"); err != nil {
		t.Fatalf("winner not retrievable: %v", err)
	}
}

func TestMemoryRepositoryUpdateKYCGuardsVerified(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := User{ID: uuid.NewString(), Email: "v@x.com", KYCStatus: KYCUnverified}
	if err := repo.Insert(ctx, user); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.UpdateKYC(ctx, user.ID, "doc-1", "face-1", KYCPending); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.FindByID(ctx, user.ID)
	if got.KYCStatus != KYCPending || got.IDDocumentRef != "doc-1" {
		t.Fatalf("unexpected record after update: %+v", got)
	}

	if err := repo.UpdateKYC(ctx, user.ID, "doc-2", "face-2", KYCVerified); err != nil {
		t.Fatalf("update to verified: %v", err)
	}
	// Once verified, later submissions are no-ops.
	if err := repo.UpdateKYC(ctx, user.ID, "doc-3", "face-3", KYCPending); err != nil {
		t.Fatalf("update after verified: %v", err)
	}
	got, _ = repo.FindByID(ctx, user.ID)
	if got.KYCStatus != KYCVerified || got.IDDocumentRef != "doc-2" {
		t.Fatalf("verified record must not regress: %+v", got)
	}
}
