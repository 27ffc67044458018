package postgres

import (
	"context"
	"fmt"

	"github.com/netra-news/backend/internal/news"
)

// AddBookmark is idempotent: a repeated call leaves the single existing row
// in place and reports created=false.
func (s *Store) AddBookmark(ctx context.Context, userID, articleID int64) (bool, error) {
	exists, err := articleExists(ctx, s.pool, articleID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, news.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO bookmarks (user_id, article_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, article_id) DO NOTHING`,
		userID, articleID,
	)
	if err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveBookmark is idempotent: removing an absent bookmark succeeds with
// removed=false.
func (s *Store) RemoveBookmark(ctx context.Context, userID, articleID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListBookmarks returns one page of the caller's bookmarked articles,
// most recently bookmarked first.
func (s *Store) ListBookmarks(ctx context.Context, userID int64, page, perPage int) ([]news.BookmarkedArticle, news.Pagination, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, news.Pagination{}, fmt.Errorf("count bookmarks: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s, b.created_at
		 FROM bookmarks b
		 JOIN articles a ON a.id = b.article_id
		 %s
		 WHERE b.user_id = $1::bigint
		 ORDER BY b.created_at DESC LIMIT $2 OFFSET $3`,
		articleColumns, articleJoins,
	)
	rows, err := s.pool.Query(ctx, query, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, news.Pagination{}, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]news.BookmarkedArticle, 0, perPage)
	for rows.Next() {
		var (
			ba                news.BookmarkedArticle
			biased, notBiased int
		)
		err := rows.Scan(
			&ba.ID, &ba.Headline, &ba.Author, &ba.ArticleLink, &ba.FeaturedImage,
			&ba.SourceLogo, &ba.SourceName, &ba.PublishDate, &ba.Category, &ba.CreatedAt,
			&biased, &notBiased,
			&ba.UserVote, &ba.IsBookmarked,
			&ba.BookmarkedAt,
		)
		if err != nil {
			return nil, news.Pagination{}, fmt.Errorf("scan bookmark: %w", err)
		}
		ba.VoteStats = news.NewVoteStats(biased, notBiased)
		ba.TotalVotes = biased + notBiased
		bookmarks = append(bookmarks, ba)
	}
	if err := rows.Err(); err != nil {
		return nil, news.Pagination{}, fmt.Errorf("iterate bookmarks: %w", err)
	}

	return bookmarks, news.NewPagination(page, perPage, total), nil
}

// UserActivity summarizes the caller's votes and bookmarks.
func (s *Store) UserActivity(ctx context.Context, userID int64) (news.UserActivity, error) {
	var activity news.UserActivity
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM votes WHERE user_id = $1),
			(SELECT COUNT(*) FROM votes WHERE user_id = $1 AND is_biased),
			(SELECT COUNT(*) FROM votes WHERE user_id = $1 AND NOT is_biased),
			(SELECT COUNT(*) FROM bookmarks WHERE user_id = $1)`,
		userID,
	).Scan(&activity.TotalVotes, &activity.BiasedVotes, &activity.NotBiasedVotes, &activity.BookmarkCount)
	if err != nil {
		return news.UserActivity{}, fmt.Errorf("aggregate user activity: %w", err)
	}
	return activity, nil
}
