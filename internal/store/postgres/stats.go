package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/netra-news/backend/internal/news"
)

// trailingWindow bounds the daily time series served by the dashboards.
const trailingWindow = "30 days"

// OverviewStats returns the platform-wide totals and category breakdown.
func (s *Store) OverviewStats(ctx context.Context) (news.OverviewStats, error) {
	var (
		stats  news.OverviewStats
		biased int
	)
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM articles),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM bookmarks),
			(SELECT COUNT(*) FROM votes WHERE is_biased)`,
	).Scan(&stats.TotalArticles, &stats.TotalVotes, &stats.TotalUsers, &stats.TotalBookmarks, &biased)
	if err != nil {
		return news.OverviewStats{}, fmt.Errorf("aggregate overview: %w", err)
	}
	stats.BiasPercentage = news.BiasRatio(biased, stats.TotalVotes)

	stats.CategoryStats, err = s.ListCategories(ctx)
	if err != nil {
		return news.OverviewStats{}, err
	}
	return stats, nil
}

// VotingStats returns vote volumes by source, by category, and per day over
// the trailing window.
func (s *Store) VotingStats(ctx context.Context) (news.VotingStats, error) {
	var stats news.VotingStats

	rows, err := s.pool.Query(ctx,
		`SELECT a.source_name,
			COUNT(*) FILTER (WHERE v.is_biased),
			COUNT(*) FILTER (WHERE NOT v.is_biased)
		 FROM votes v JOIN articles a ON a.id = v.article_id
		 GROUP BY a.source_name ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return news.VotingStats{}, fmt.Errorf("votes by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sv news.SourceVotes
		if err := rows.Scan(&sv.Source, &sv.Biased, &sv.NotBiased); err != nil {
			return news.VotingStats{}, fmt.Errorf("scan source votes: %w", err)
		}
		stats.VotesBySource = append(stats.VotesBySource, sv)
	}
	if err := rows.Err(); err != nil {
		return news.VotingStats{}, fmt.Errorf("iterate source votes: %w", err)
	}

	stats.VotesByCategory, err = s.votesByCategory(ctx)
	if err != nil {
		return news.VotingStats{}, err
	}

	dailyRows, err := s.pool.Query(ctx,
		`SELECT v.created_at::date AS day,
			COUNT(*) FILTER (WHERE v.is_biased),
			COUNT(*) FILTER (WHERE NOT v.is_biased)
		 FROM votes v
		 WHERE v.created_at >= now() - interval '`+trailingWindow+`'
		 GROUP BY day ORDER BY day`,
	)
	if err != nil {
		return news.VotingStats{}, fmt.Errorf("votes over time: %w", err)
	}
	defer dailyRows.Close()
	for dailyRows.Next() {
		var (
			day time.Time
			dv  news.DailyVotes
		)
		if err := dailyRows.Scan(&day, &dv.Biased, &dv.NotBiased); err != nil {
			return news.VotingStats{}, fmt.Errorf("scan daily votes: %w", err)
		}
		dv.Date = day.Format("2006-01-02")
		stats.VotesOverTime = append(stats.VotesOverTime, dv)
	}
	if err := dailyRows.Err(); err != nil {
		return news.VotingStats{}, fmt.Errorf("iterate daily votes: %w", err)
	}

	return stats, nil
}

func (s *Store) votesByCategory(ctx context.Context) ([]news.CategoryVotes, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.category,
			COUNT(*) FILTER (WHERE v.is_biased),
			COUNT(*) FILTER (WHERE NOT v.is_biased)
		 FROM votes v JOIN articles a ON a.id = v.article_id
		 GROUP BY a.category ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("votes by category: %w", err)
	}
	defer rows.Close()

	var out []news.CategoryVotes
	for rows.Next() {
		var cv news.CategoryVotes
		if err := rows.Scan(&cv.Category, &cv.Biased, &cv.NotBiased); err != nil {
			return nil, fmt.Errorf("scan category votes: %w", err)
		}
		cv.BiasRatio = news.BiasRatio(cv.Biased, cv.Biased+cv.NotBiased)
		out = append(out, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category votes: %w", err)
	}
	return out, nil
}

// BookmarkStats returns bookmark volumes by category, source, and day, plus
// the bias split of votes on bookmarked articles.
func (s *Store) BookmarkStats(ctx context.Context) (news.BookmarkStats, error) {
	var stats news.BookmarkStats

	catRows, err := s.pool.Query(ctx,
		`SELECT a.category, COUNT(*)
		 FROM bookmarks b JOIN articles a ON a.id = b.article_id
		 GROUP BY a.category ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return news.BookmarkStats{}, fmt.Errorf("bookmarks by category: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cc news.CategoryCount
		if err := catRows.Scan(&cc.Name, &cc.Count); err != nil {
			return news.BookmarkStats{}, fmt.Errorf("scan bookmark category: %w", err)
		}
		stats.BookmarksByCategory = append(stats.BookmarksByCategory, cc)
	}
	if err := catRows.Err(); err != nil {
		return news.BookmarkStats{}, fmt.Errorf("iterate bookmark categories: %w", err)
	}

	srcRows, err := s.pool.Query(ctx,
		`SELECT a.source_name, COUNT(*)
		 FROM bookmarks b JOIN articles a ON a.id = b.article_id
		 GROUP BY a.source_name ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return news.BookmarkStats{}, fmt.Errorf("bookmarks by source: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var sc news.SourceCount
		if err := srcRows.Scan(&sc.Source, &sc.Count); err != nil {
			return news.BookmarkStats{}, fmt.Errorf("scan bookmark source: %w", err)
		}
		stats.BookmarksBySource = append(stats.BookmarksBySource, sc)
	}
	if err := srcRows.Err(); err != nil {
		return news.BookmarkStats{}, fmt.Errorf("iterate bookmark sources: %w", err)
	}

	stats.BookmarksOverTime, err = s.dailyCounts(ctx, "bookmarks")
	if err != nil {
		return news.BookmarkStats{}, err
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_biased), COUNT(*) FILTER (WHERE NOT is_biased)
		 FROM votes
		 WHERE article_id IN (SELECT DISTINCT article_id FROM bookmarks)`,
	).Scan(&stats.BookmarkedBiasDistribution.Biased, &stats.BookmarkedBiasDistribution.NotBiased)
	if err != nil {
		return news.BookmarkStats{}, fmt.Errorf("bookmarked bias distribution: %w", err)
	}

	return stats, nil
}

// SourceStats returns per-source bias summaries and the threshold-filtered
// rankings. Ranked lists exclude sources with fewer than minVotes votes to
// avoid noise from near-zero samples.
func (s *Store) SourceStats(ctx context.Context, minVotes int) (news.SourceStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.source_name,
			COUNT(DISTINCT a.id),
			COUNT(v.id),
			COUNT(v.id) FILTER (WHERE v.is_biased),
			COUNT(v.id) FILTER (WHERE NOT v.is_biased)
		 FROM articles a LEFT JOIN votes v ON v.article_id = a.id
		 GROUP BY a.source_name HAVING COUNT(v.id) > 0
		 ORDER BY COUNT(v.id) DESC`,
	)
	if err != nil {
		return news.SourceStats{}, fmt.Errorf("source stats: %w", err)
	}
	defer rows.Close()

	var stats news.SourceStats
	for rows.Next() {
		var sb news.SourceBias
		if err := rows.Scan(&sb.Source, &sb.ArticleCount, &sb.TotalVotes, &sb.BiasedVotes, &sb.NotBiasedVotes); err != nil {
			return news.SourceStats{}, fmt.Errorf("scan source bias: %w", err)
		}
		sb.BiasRatio = news.BiasRatio(sb.BiasedVotes, sb.TotalVotes)
		stats.BiasBySource = append(stats.BiasBySource, sb)
	}
	if err := rows.Err(); err != nil {
		return news.SourceStats{}, fmt.Errorf("iterate source bias: %w", err)
	}

	var ranked []news.SourceBias
	for _, sb := range stats.BiasBySource {
		if sb.TotalVotes >= minVotes {
			ranked = append(ranked, sb)
		}
	}

	loved := append([]news.SourceBias(nil), ranked...)
	sort.SliceStable(loved, func(i, j int) bool {
		return loved[i].NotBiasedVotes > loved[j].NotBiasedVotes
	})
	stats.MostLovedSources = topSources(loved)

	trusted := append([]news.SourceBias(nil), ranked...)
	sort.SliceStable(trusted, func(i, j int) bool {
		return trusted[i].BiasRatio > trusted[j].BiasRatio
	})
	stats.LeastTrustedSources = topSources(trusted)

	return stats, nil
}

const rankingLimit = 10

func topSources(sources []news.SourceBias) []news.SourceBias {
	if len(sources) > rankingLimit {
		return sources[:rankingLimit]
	}
	return sources
}

// CategoryStats returns category article counts and per-category bias.
func (s *Store) CategoryStats(ctx context.Context) (news.CategoryStats, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return news.CategoryStats{}, err
	}
	byCategory, err := s.votesByCategory(ctx)
	if err != nil {
		return news.CategoryStats{}, err
	}
	return news.CategoryStats{
		Categories:     categories,
		BiasByCategory: byCategory,
	}, nil
}

// AuthorStats returns per-author bias ratios, excluding authors below the
// minimum vote threshold.
func (s *Store) AuthorStats(ctx context.Context, minVotes int) (news.AuthorStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.author,
			COUNT(v.id),
			COUNT(v.id) FILTER (WHERE v.is_biased)
		 FROM articles a JOIN votes v ON v.article_id = a.id
		 WHERE a.author <> ''
		 GROUP BY a.author HAVING COUNT(v.id) >= $1
		 ORDER BY COUNT(v.id) DESC`,
		minVotes,
	)
	if err != nil {
		return news.AuthorStats{}, fmt.Errorf("author stats: %w", err)
	}
	defer rows.Close()

	var stats news.AuthorStats
	for rows.Next() {
		var (
			ab     news.AuthorBias
			biased int
		)
		if err := rows.Scan(&ab.Author, &ab.TotalVotes, &biased); err != nil {
			return news.AuthorStats{}, fmt.Errorf("scan author bias: %w", err)
		}
		ab.BiasRatio = news.BiasRatio(biased, ab.TotalVotes)
		stats.AuthorBias = append(stats.AuthorBias, ab)
	}
	if err := rows.Err(); err != nil {
		return news.AuthorStats{}, fmt.Errorf("iterate author bias: %w", err)
	}
	return stats, nil
}

// EngagementStats returns the daily activity series over the trailing
// window, the per-category engagement split, and the most engaged users.
func (s *Store) EngagementStats(ctx context.Context) (news.EngagementStats, error) {
	var (
		stats news.EngagementStats
		err   error
	)

	stats.DailyVotes, err = s.dailyCounts(ctx, "votes")
	if err != nil {
		return news.EngagementStats{}, err
	}
	stats.DailyBookmarks, err = s.dailyCounts(ctx, "bookmarks")
	if err != nil {
		return news.EngagementStats{}, err
	}
	stats.DailyRegistrations, err = s.dailyCounts(ctx, "users")
	if err != nil {
		return news.EngagementStats{}, err
	}

	catRows, err := s.pool.Query(ctx,
		`SELECT a.category,
			COUNT(DISTINCT v.id),
			COUNT(DISTINCT b.id)
		 FROM articles a
		 LEFT JOIN votes v ON v.article_id = a.id
		 LEFT JOIN bookmarks b ON b.article_id = a.id
		 GROUP BY a.category
		 ORDER BY COUNT(DISTINCT v.id) + COUNT(DISTINCT b.id) DESC`,
	)
	if err != nil {
		return news.EngagementStats{}, fmt.Errorf("engagement by category: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var ce news.CategoryEngagement
		if err := catRows.Scan(&ce.Category, &ce.Votes, &ce.Bookmarks); err != nil {
			return news.EngagementStats{}, fmt.Errorf("scan category engagement: %w", err)
		}
		stats.EngagementByCategory = append(stats.EngagementByCategory, ce)
	}
	if err := catRows.Err(); err != nil {
		return news.EngagementStats{}, fmt.Errorf("iterate category engagement: %w", err)
	}

	userRows, err := s.pool.Query(ctx,
		`SELECT u.username, COALESCE(v.c, 0), COALESCE(b.c, 0)
		 FROM users u
		 LEFT JOIN (SELECT user_id, COUNT(*) AS c FROM votes GROUP BY user_id) v ON v.user_id = u.id
		 LEFT JOIN (SELECT user_id, COUNT(*) AS c FROM bookmarks GROUP BY user_id) b ON b.user_id = u.id
		 ORDER BY COALESCE(v.c, 0) + COALESCE(b.c, 0) DESC, u.username
		 LIMIT 10`,
	)
	if err != nil {
		return news.EngagementStats{}, fmt.Errorf("most engaged users: %w", err)
	}
	defer userRows.Close()
	for userRows.Next() {
		var ue news.UserEngagement
		if err := userRows.Scan(&ue.Username, &ue.Votes, &ue.Bookmarks); err != nil {
			return news.EngagementStats{}, fmt.Errorf("scan user engagement: %w", err)
		}
		stats.MostEngagedUsers = append(stats.MostEngagedUsers, ue)
	}
	if err := userRows.Err(); err != nil {
		return news.EngagementStats{}, fmt.Errorf("iterate user engagement: %w", err)
	}

	return stats, nil
}

// dailyCounts buckets a table's created_at by day over the trailing window.
// The table name is fixed by the callers, never caller input.
func (s *Store) dailyCounts(ctx context.Context, table string) ([]news.DailyCount, error) {
	query := fmt.Sprintf(
		`SELECT created_at::date AS day, COUNT(*) FROM %s
		 WHERE created_at >= now() - interval '%s'
		 GROUP BY day ORDER BY day`,
		table, trailingWindow,
	)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("daily counts for %s: %w", table, err)
	}
	defer rows.Close()

	var out []news.DailyCount
	for rows.Next() {
		var (
			day time.Time
			dc  news.DailyCount
		)
		if err := rows.Scan(&day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		dc.Date = day.Format("2006-01-02")
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily counts: %w", err)
	}
	return out, nil
}
