package kyc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/identra/identra/internal/blob"
	"github.com/identra/identra/internal/identity"
)

// ErrMissingDocument means one or both mandatory artifacts were absent.
var ErrMissingDocument = errors.New("both an id document and a face photo are required")

// Upload is one artifact received from a multipart submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Intake accepts verification documents and advances the user's KYC status.
type Intake struct {
	repo  identity.Repository
	blobs blob.Store
}

// NewIntake builds a document intake over the given stores.
func NewIntake(repo identity.Repository, blobs blob.Store) *Intake {
	return &Intake{repo: repo, blobs: blobs}
}

// Submit stores both artifacts and moves the user to pending in a single
// repository write. Nothing is persisted when either artifact is missing.
// Resubmission while pending overwrites the references and stays pending;
// a verified user is never downgraded.
func (i *Intake) Submit(ctx context.Context, userID string, idDocument, facePhoto Upload) error {
	if len(idDocument.Data) == 0 || len(facePhoto.Data) == 0 {
		return ErrMissingDocument
	}

	now := time.Now().UnixNano()
	docRef, err := i.blobs.Store(ctx, idDocument.Data,
		artifactName(userID, "id-document", now, idDocument.Filename), sniffType(idDocument))
	if err != nil {
		return fmt.Errorf("store id document: %w", err)
	}
	faceRef, err := i.blobs.Store(ctx, facePhoto.Data,
		artifactName(userID, "face-photo", now, facePhoto.Filename), sniffType(facePhoto))
	if err != nil {
		return fmt.Errorf("store face photo: %w", err)
	}

	if err := i.repo.UpdateKYC(ctx, userID, docRef, faceRef, identity.KYCPending); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// artifactName builds a per-user, per-upload unique object key: user id plus
// nanosecond timestamp plus the original extension.
func artifactName(userID, kind string, ts int64, original string) string {
	return fmt.Sprintf("kyc/%s/%s-%d%s", userID, kind, ts, filepath.Ext(original))
}

func sniffType(u Upload) string {
	if u.ContentType != "" {
		return u.ContentType
	}
	return http.DetectContentType(u.Data)
}
