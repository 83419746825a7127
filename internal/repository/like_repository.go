package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chirper/social-service/internal/models"
)

type LikeRepository interface {
	Create(ctx context.Context, userID, tweetID uint64) error
	Delete(ctx context.Context, userID, tweetID uint64) error
	Exists(ctx context.Context, userID, tweetID uint64) (bool, error)
	// ListByUsers returns every like placed by the given users, newest
	// first. Feeds the liked-tweet half of the home timeline.
	ListByUsers(ctx context.Context, userIDs []uint64) ([]*models.Like, error)
	ListLikers(ctx context.Context, tweetID uint64, page int) ([]*models.UserProfile, error)
	ListTweetIDsByUser(ctx context.Context, userID uint64, page int) ([]uint64, error)
	CountByTweet(ctx context.Context, tweetID uint64) (int64, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

type likeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, userID, tweetID uint64) error {
	query := `
		INSERT INTO likes (user_id, tweet_id, created_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, userID, tweetID, time.Now())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEdge
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, tweetID uint64) error {
	query := `
		DELETE FROM likes
		WHERE user_id = ? AND tweet_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, userID, tweetID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
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

func (r *likeRepository) Exists(ctx context.Context, userID, tweetID uint64) (bool, error) {
	query := `SELECT COUNT(*) FROM likes WHERE user_id = ? AND tweet_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, tweetID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

func (r *likeRepository) ListByUsers(ctx context.Context, userIDs []uint64) ([]*models.Like, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT user_id, tweet_id, created_at FROM likes
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, idArgs(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []*models.Like
	for rows.Next() {
		var like models.Like
		if err := rows.Scan(&like.UserID, &like.TweetID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, &like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}
	return likes, nil
}

func (r *likeRepository) ListLikers(ctx context.Context, tweetID uint64, page int) ([]*models.UserProfile, error) {
	query := `
		SELECT users.id, users.username, users.name, users.bio FROM users
		INNER JOIN likes ON users.id = likes.user_id
		WHERE likes.tweet_id = ?
		ORDER BY likes.created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, tweetID, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	defer rows.Close()

	var profiles []*models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.Name, &p.Bio); err != nil {
			return nil, fmt.Errorf("failed to scan liker: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likers: %w", err)
	}
	return profiles, nil
}

func (r *likeRepository) ListTweetIDsByUser(ctx context.Context, userID uint64, page int) ([]uint64, error) {
	query := `
		SELECT tweet_id FROM likes
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked tweets: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan liked tweet id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liked tweets: %w", err)
	}
	return ids, nil
}

func (r *likeRepository) CountByTweet(ctx context.Context, tweetID uint64) (int64, error) {
	query := `SELECT COUNT(*) FROM likes WHERE tweet_id = ?`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, tweetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *likeRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	query := `SELECT COUNT(*) FROM likes WHERE user_id = ?`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
