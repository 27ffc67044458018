package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/netra-news/backend/internal/news"
)

// UpsertVote records the caller's bias judgment as a single atomic
// insert-or-update keyed by (user_id, article_id), so the constraint
// violation path is never exercised in normal operation. Returns the
// article's refreshed stats.
func (s *Store) UpsertVote(ctx context.Context, userID, articleID int64, isBiased bool) (news.VoteStats, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return news.VoteStats{}, fmt.Errorf("begin vote tx: %w", err)
	}
	defer rollback(ctx, tx)

	exists, err := articleExists(ctx, tx, articleID)
	if err != nil {
		return news.VoteStats{}, err
	}
	if !exists {
		return news.VoteStats{}, news.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO votes (user_id, article_id, is_biased) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, article_id) DO UPDATE SET is_biased = EXCLUDED.is_biased`,
		userID, articleID, isBiased,
	)
	if err != nil {
		return news.VoteStats{}, fmt.Errorf("upsert vote: %w", err)
	}

	stats, err := voteStats(ctx, tx, articleID)
	if err != nil {
		return news.VoteStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return news.VoteStats{}, fmt.Errorf("commit vote tx: %w", err)
	}
	return stats, nil
}

// DeleteVote removes the caller's vote and returns the refreshed stats;
// news.ErrNotFound when no vote existed.
func (s *Store) DeleteVote(ctx context.Context, userID, articleID int64) (news.VoteStats, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return news.VoteStats{}, fmt.Errorf("begin vote tx: %w", err)
	}
	defer rollback(ctx, tx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM votes WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	)
	if err != nil {
		return news.VoteStats{}, fmt.Errorf("delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.VoteStats{}, news.ErrNotFound
	}

	stats, err := voteStats(ctx, tx, articleID)
	if err != nil {
		return news.VoteStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return news.VoteStats{}, fmt.Errorf("commit vote tx: %w", err)
	}
	return stats, nil
}

// rowQuerier is satisfied by both the pool and an open transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func articleExists(ctx context.Context, q rowQuerier, articleID int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)`, articleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}

func voteStats(ctx context.Context, q rowQuerier, articleID int64) (news.VoteStats, error) {
	var biased, notBiased int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_biased), COUNT(*) FILTER (WHERE NOT is_biased)
		 FROM votes WHERE article_id = $1`,
		articleID,
	).Scan(&biased, &notBiased)
	if err != nil {
		return news.VoteStats{}, fmt.Errorf("aggregate vote stats: %w", err)
	}
	return news.NewVoteStats(biased, notBiased), nil
}
