package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chirper/social-service/internal/models"
)

// PageSize is the fixed page size used by every paginated listing.
const PageSize = 10

type UserRepository interface {
	GetByID(ctx context.Context, userID uint64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, userID uint64, from, to models.UserStatus) error
	SetLastSeenOfTimeline(ctx context.Context, userID uint64, lastSeen time.Time) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, bio, location, link, birth_day, status, last_seen_of_timeline, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, userID uint64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var birthDay, lastSeen sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Bio,
		&user.Location,
		&user.Link,
		&birthDay,
		&user.Status,
		&lastSeen,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if birthDay.Valid {
		user.BirthDay = &birthDay.Time
	}
	if lastSeen.Valid {
		user.LastSeenOfTimeline = &lastSeen.Time
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, bio = ?, location = ?, link = ?, birth_day = ?, updated_at = ?
		WHERE id = ?
	`
	var birthDay interface{}
	if user.BirthDay != nil {
		birthDay = *user.BirthDay
	}
	_, err := r.db.ExecContext(ctx, query,
		user.Name, user.Bio, user.Location, user.Link, birthDay, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// SetStatus flips the privacy flag only when the current value matches
// from, so a repeated flip is a harmless no-op.
func (r *userRepository) SetStatus(ctx context.Context, userID uint64, from, to models.UserStatus) error {
	query := `
		UPDATE users
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	_, err := r.db.ExecContext(ctx, query, to, time.Now(), userID, from)
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	return nil
}

func (r *userRepository) SetLastSeenOfTimeline(ctx context.Context, userID uint64, lastSeen time.Time) error {
	query := `
		UPDATE users
		SET last_seen_of_timeline = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, lastSeen, userID)
	if err != nil {
		return fmt.Errorf("failed to set last seen of timeline: %w", err)
	}
	return nil
}
