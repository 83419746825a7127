package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"chirper/social-service/internal/models"
)

// ErrDuplicateEdge is returned when an insert collides with the unique key
// on (actor_id, subject_id). Two concurrent follow/block requests on the
// same pair are resolved by this constraint, not by locking.
var ErrDuplicateEdge = errors.New("relationship edge already exists")

type FollowRepository interface {
	Get(ctx context.Context, actorID, subjectID uint64) (*models.FollowEdge, error)
	Create(ctx context.Context, edge *models.FollowEdge) error
	UpdateStatus(ctx context.Context, actorID, subjectID uint64, from, to models.FollowStatus) error
	Delete(ctx context.Context, actorID, subjectID uint64, status models.FollowStatus) error
	// DeleteBetween removes every FOLLOWER and PENDING edge in both
	// directions between the two accounts. BLOCK edges are untouched.
	DeleteBetween(ctx context.Context, userID, otherID uint64) error
	// AcceptAllPending turns every PENDING edge toward the subject into a
	// FOLLOWER edge. Used when an account goes public.
	AcceptAllPending(ctx context.Context, subjectID uint64) error
	ListSubjectIDs(ctx context.Context, actorID uint64, status models.FollowStatus) ([]uint64, error)
	ListActors(ctx context.Context, subjectID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error)
	ListSubjects(ctx context.Context, actorID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error)
	CountActors(ctx context.Context, subjectID uint64, status models.FollowStatus) (int64, error)
	CountSubjects(ctx context.Context, actorID uint64, status models.FollowStatus) (int64, error)
}

type followRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Get(ctx context.Context, actorID, subjectID uint64) (*models.FollowEdge, error) {
	query := `
		SELECT actor_id, subject_id, status, created_at FROM follows
		WHERE actor_id = ? AND subject_id = ?
	`
	var edge models.FollowEdge
	err := r.db.QueryRowContext(ctx, query, actorID, subjectID).Scan(
		&edge.ActorID, &edge.SubjectID, &edge.Status, &edge.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get follow edge: %w", err)
	}
	return &edge, nil
}

func (r *followRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	query := `
		INSERT INTO follows (actor_id, subject_id, status, created_at)
		VALUES (?, ?, ?, ?)
	`
	createdAt := edge.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query, edge.ActorID, edge.SubjectID, edge.Status, createdAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEdge
		}
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

func (r *followRepository) UpdateStatus(ctx context.Context, actorID, subjectID uint64, from, to models.FollowStatus) error {
	query := `
		UPDATE follows
		SET status = ?
		WHERE actor_id = ? AND subject_id = ? AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query, to, actorID, subjectID, from)
	if err != nil {
		return fmt.Errorf("failed to update follow edge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, actorID, subjectID uint64, status models.FollowStatus) error {
	query := `
		DELETE FROM follows
		WHERE actor_id = ? AND subject_id = ? AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query, actorID, subjectID, status)
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *followRepository) DeleteBetween(ctx context.Context, userID, otherID uint64) error {
	query := `
		DELETE FROM follows
		WHERE status IN (?, ?) AND
		      (actor_id = ? AND subject_id = ? OR actor_id = ? AND subject_id = ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		models.FollowStatusFollower, models.FollowStatusPending,
		userID, otherID, otherID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete edges between users: %w", err)
	}
	return nil
}

func (r *followRepository) AcceptAllPending(ctx context.Context, subjectID uint64) error {
	query := `
		UPDATE follows
		SET status = ?
		WHERE subject_id = ? AND status = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		models.FollowStatusFollower, subjectID, models.FollowStatusPending)
	if err != nil {
		return fmt.Errorf("failed to accept pending followers: %w", err)
	}
	return nil
}

func (r *followRepository) ListSubjectIDs(ctx context.Context, actorID uint64, status models.FollowStatus) ([]uint64, error) {
	query := `
		SELECT subject_id FROM follows
		WHERE actor_id = ? AND status = ?
		ORDER BY created_at DESC
	`
	return r.listIDs(ctx, query, actorID, status)
}

func (r *followRepository) listIDs(ctx context.Context, query string, args ...interface{}) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list edge ids: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan edge id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edge ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) ListActors(ctx context.Context, subjectID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error) {
	query := `
		SELECT users.id, users.username, users.name, users.bio FROM users
		INNER JOIN follows ON users.id = follows.actor_id
		WHERE follows.subject_id = ? AND follows.status = ?
		ORDER BY follows.created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listProfiles(ctx, query, subjectID, status, PageSize, page*PageSize)
}

func (r *followRepository) ListSubjects(ctx context.Context, actorID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error) {
	query := `
		SELECT users.id, users.username, users.name, users.bio FROM users
		INNER JOIN follows ON users.id = follows.subject_id
		WHERE follows.actor_id = ? AND follows.status = ?
		ORDER BY follows.created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listProfiles(ctx, query, actorID, status, PageSize, page*PageSize)
}

func (r *followRepository) listProfiles(ctx context.Context, query string, args ...interface{}) ([]*models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.Name, &p.Bio); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

func (r *followRepository) CountActors(ctx context.Context, subjectID uint64, status models.FollowStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE subject_id = ? AND status = ?`
	return r.count(ctx, query, subjectID, status)
}

func (r *followRepository) CountSubjects(ctx context.Context, actorID uint64, status models.FollowStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE actor_id = ? AND status = ?`
	return r.count(ctx, query, actorID, status)
}

func (r *followRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count edges: %w", err)
	}
	return count, nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
