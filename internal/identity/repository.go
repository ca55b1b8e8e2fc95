package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users. It is the sole arbiter of identity-key
// uniqueness; callers must treat Insert conflicts as authoritative rather
// than relying on a prior lookup.
type Repository interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByKey(ctx context.Context, key KeyType, value string) (User, error)
	Insert(ctx context.Context, user User) error
	// UpdateKYC stores both document references and the new status in one
	// write. A verified user is never downgraded; the update becomes a
	// no-op instead.
	UpdateKYC(ctx context.Context, id, idDocumentRef, facePhotoRef string, status KYCStatus) error
}

const uniqueViolationCode = "23505"

// keyColumns whitelists lookup columns so FindByKey never interpolates
// caller-controlled SQL.
var keyColumns = map[KeyType]string{
	KeyGoogleID:   "google_id",
	KeyFacebookID: "facebook_id",
	KeyLineID:     "line_id",
	KeyEmail:      "email",
	KeyPhone:      "phone",
}

// PostgresRepository implements Repository using PostgreSQL.
//
// Expected schema: a users table with one column per User field plus partial
// unique indexes on each identity key, e.g.
//
//	CREATE UNIQUE INDEX users_email_key ON users (email) WHERE email <> '';
//
// so that absent keys (stored as '') do not collide.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, google_id, facebook_id, line_id, email, phone,
	display_name, avatar_ref, password_hash, kyc_status,
	id_document_ref, face_photo_ref, created_at`

// FindByID fetches a user by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByKey fetches a user by one of its unique identity keys.
func (r *PostgresRepository) FindByKey(ctx context.Context, key KeyType, value string) (User, error) {
	col, ok := keyColumns[key]
	if !ok {
		return User{}, fmt.Errorf("unknown identity key %q", key)
	}
	if value == "" {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+` = $1`, value)
	return scanUser(row)
}

// Insert stores a new user. A unique-index violation on any identity key is
// reported as ErrDuplicateIdentity.
func (r *PostgresRepository) Insert(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		userID, user.GoogleID, user.FacebookID, user.LineID, user.Email, user.Phone,
		user.DisplayName, user.AvatarRef, user.PasswordHash, string(user.KYCStatus),
		user.IDDocumentRef, user.FacePhotoRef, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateKYC persists both artifact references and the status transition.
// The status guard keeps verified users verified regardless of caller bugs.
func (r *PostgresRepository) UpdateKYC(ctx context.Context, id, idDocumentRef, facePhotoRef string, status KYCStatus) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users
		SET id_document_ref = $1, face_photo_ref = $2, kyc_status = $3
		WHERE id = $4 AND kyc_status <> $5`,
		idDocumentRef, facePhotoRef, string(status), userID, string(KYCVerified))
	if err != nil {
		return fmt.Errorf("update kyc: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Either the user does not exist or the guard held.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		status    string
		createdAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.GoogleID, &user.FacebookID, &user.LineID, &user.Email, &user.Phone,
		&user.DisplayName, &user.AvatarRef, &user.PasswordHash, &status,
		&user.IDDocumentRef, &user.FacePhotoRef, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.String()
	user.KYCStatus = KYCStatus(status)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
