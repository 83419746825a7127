package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"chirper/social-service/internal/models"
)

type TweetRepository interface {
	GetByID(ctx context.Context, tweetID uint64) (*models.Tweet, error)
	GetByIDs(ctx context.Context, tweetIDs []uint64) ([]*models.Tweet, error)
	Create(ctx context.Context, tweet *models.Tweet) error
	// Delete removes the tweet, its likes and every RETWEET referencing it
	// (plus their likes) in one transaction. COMMENT and QUOTE tweets that
	// reference the deleted tweet are kept with a dangling reference.
	Delete(ctx context.Context, tweetID uint64) error
	ExistsRetweet(ctx context.Context, authorID, referenceTweetID uint64) (bool, error)
	ListByAuthors(ctx context.Context, authorIDs []uint64) ([]*models.Tweet, error)
	ListByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error)
	ListRepliesByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error)
	ListByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType, page int) ([]*models.Tweet, error)
	ListRetweeterIDs(ctx context.Context, referenceTweetID uint64, page int) ([]uint64, error)
	CountByAuthor(ctx context.Context, authorID uint64) (int64, error)
	CountRepliesByAuthor(ctx context.Context, authorID uint64) (int64, error)
	CountByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType) (int64, error)
}

type tweetRepository struct {
	db *sql.DB
}

func NewTweetRepository(db *sql.DB) TweetRepository {
	return &tweetRepository{db: db}
}

const tweetColumns = `id, user_id, text, tweet_type, reference_tweet_id, created_at`

func (r *tweetRepository) GetByID(ctx context.Context, tweetID uint64) (*models.Tweet, error) {
	query := `SELECT ` + tweetColumns + ` FROM tweets WHERE id = ?`
	tweet, err := scanTweet(r.db.QueryRowContext(ctx, query, tweetID))
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	return tweet, nil
}

func (r *tweetRepository) GetByIDs(ctx context.Context, tweetIDs []uint64) ([]*models.Tweet, error) {
	if len(tweetIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + tweetColumns + ` FROM tweets WHERE id IN (` + placeholders(len(tweetIDs)) + `)`
	return r.listTweets(ctx, query, idArgs(tweetIDs)...)
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	query := `
		INSERT INTO tweets (user_id, text, tweet_type, reference_tweet_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	createdAt := tweet.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var reference interface{}
	if tweet.ReferenceTweetID != nil {
		reference = *tweet.ReferenceTweetID
	}
	result, err := r.db.ExecContext(ctx, query,
		tweet.AuthorID, tweet.Text, tweet.Type, reference, createdAt)
	if err != nil {
		// The retweet uniqueness constraint on (user_id, reference_tweet_id)
		// is the only unique key besides the primary one.
		if isDuplicateKey(err) {
			return ErrDuplicateEdge
		}
		return fmt.Errorf("failed to create tweet: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tweet id: %w", err)
	}
	tweet.ID = uint64(id)
	tweet.CreatedAt = createdAt
	return nil
}

func (r *tweetRepository) Delete(ctx context.Context, tweetID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	deleteLikes := `
		DELETE FROM likes
		WHERE tweet_id = ? OR tweet_id IN (
			SELECT id FROM (
				SELECT id FROM tweets
				WHERE tweet_type = ? AND reference_tweet_id = ?
			) AS retweet_ids
		)
	`
	if _, err := tx.ExecContext(ctx, deleteLikes, tweetID, models.TweetTypeRetweet, tweetID); err != nil {
		return fmt.Errorf("failed to delete likes of tweet: %w", err)
	}

	deleteTweets := `
		DELETE FROM tweets
		WHERE id = ? OR tweet_type = ? AND reference_tweet_id = ?
	`
	if _, err := tx.ExecContext(ctx, deleteTweets, tweetID, models.TweetTypeRetweet, tweetID); err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return nil
}

func (r *tweetRepository) ExistsRetweet(ctx context.Context, authorID, referenceTweetID uint64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM tweets
		WHERE user_id = ? AND tweet_type = ? AND reference_tweet_id = ?
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, authorID, models.TweetTypeRetweet, referenceTweetID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check retweet: %w", err)
	}
	return count > 0, nil
}

func (r *tweetRepository) ListByAuthors(ctx context.Context, authorIDs []uint64) ([]*models.Tweet, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + tweetColumns + ` FROM tweets
		WHERE user_id IN (` + placeholders(len(authorIDs)) + `)
		ORDER BY created_at DESC
	`
	return r.listTweets(ctx, query, idArgs(authorIDs)...)
}

func (r *tweetRepository) ListByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error) {
	query := `
		SELECT ` + tweetColumns + ` FROM tweets
		WHERE user_id = ? AND tweet_type <> ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listTweets(ctx, query, authorID, models.TweetTypeComment, PageSize, page*PageSize)
}

func (r *tweetRepository) ListRepliesByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error) {
	query := `
		SELECT ` + tweetColumns + ` FROM tweets
		WHERE user_id = ? AND tweet_type = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listTweets(ctx, query, authorID, models.TweetTypeComment, PageSize, page*PageSize)
}

func (r *tweetRepository) ListByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType, page int) ([]*models.Tweet, error) {
	query := `
		SELECT ` + tweetColumns + ` FROM tweets
		WHERE reference_tweet_id = ? AND tweet_type = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listTweets(ctx, query, referenceTweetID, tweetType, PageSize, page*PageSize)
}

func (r *tweetRepository) ListRetweeterIDs(ctx context.Context, referenceTweetID uint64, page int) ([]uint64, error) {
	query := `
		SELECT user_id FROM tweets
		WHERE reference_tweet_id = ? AND tweet_type = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, referenceTweetID, models.TweetTypeRetweet, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list retweeters: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan retweeter id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retweeters: %w", err)
	}
	return ids, nil
}

func (r *tweetRepository) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	query := `SELECT COUNT(*) FROM tweets WHERE user_id = ?`
	return r.count(ctx, query, authorID)
}

func (r *tweetRepository) CountRepliesByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	query := `SELECT COUNT(*) FROM tweets WHERE user_id = ? AND tweet_type = ?`
	return r.count(ctx, query, authorID, models.TweetTypeComment)
}

func (r *tweetRepository) CountByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType) (int64, error) {
	query := `SELECT COUNT(*) FROM tweets WHERE reference_tweet_id = ? AND tweet_type = ?`
	return r.count(ctx, query, referenceTweetID, tweetType)
}

func (r *tweetRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tweets: %w", err)
	}
	return count, nil
}

func (r *tweetRepository) listTweets(ctx context.Context, query string, args ...interface{}) ([]*models.Tweet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tweets: %w", err)
	}
	defer rows.Close()

	var tweets []*models.Tweet
	for rows.Next() {
		tweet, err := scanTweetRows(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tweets: %w", err)
	}
	return tweets, nil
}

func scanTweet(row *sql.Row) (*models.Tweet, error) {
	var tweet models.Tweet
	var reference sql.NullInt64
	err := row.Scan(&tweet.ID, &tweet.AuthorID, &tweet.Text, &tweet.Type, &reference, &tweet.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reference.Valid {
		id := uint64(reference.Int64)
		tweet.ReferenceTweetID = &id
	}
	return &tweet, nil
}

func scanTweetRows(rows *sql.Rows) (*models.Tweet, error) {
	var tweet models.Tweet
	var reference sql.NullInt64
	err := rows.Scan(&tweet.ID, &tweet.AuthorID, &tweet.Text, &tweet.Type, &reference, &tweet.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tweet: %w", err)
	}
	if reference.Valid {
		id := uint64(reference.Int64)
		tweet.ReferenceTweetID = &id
	}
	return &tweet, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
