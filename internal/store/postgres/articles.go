package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/netra-news/backend/internal/news"
)

// articleColumns is the annotated projection shared by the listing,
// detail, and bookmark queries. $1 is always the viewer id (NULL for
// anonymous callers, so the viewer joins match nothing).
const articleColumns = `
	a.id, a.headline, a.author, a.article_link, a.featured_image,
	a.source_logo, a.source_name, a.publish_date, a.category, a.created_at,
	COALESCE(vs.biased, 0), COALESCE(vs.not_biased, 0),
	uv.is_biased, ub.id IS NOT NULL`

const articleJoins = `
	LEFT JOIN (
		SELECT article_id,
			COUNT(*) FILTER (WHERE is_biased) AS biased,
			COUNT(*) FILTER (WHERE NOT is_biased) AS not_biased
		FROM votes GROUP BY article_id
	) vs ON vs.article_id = a.id
	LEFT JOIN votes uv ON uv.article_id = a.id AND uv.user_id = $1::bigint
	LEFT JOIN bookmarks ub ON ub.article_id = a.id AND ub.user_id = $1::bigint`

// ListArticles returns one page of the catalog, newest-created first.
func (s *Store) ListArticles(ctx context.Context, filter news.ArticleFilter, viewer *int64) ([]news.ArticleView, news.Pagination, error) {
	where, whereArgs := s.buildArticleWhere(filter, 2)

	countWhere, countArgs := s.buildArticleWhere(filter, 1)
	var total int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM articles a"+countWhere, countArgs...).Scan(&total)
	if err != nil {
		return nil, news.Pagination{}, fmt.Errorf("count articles: %w", err)
	}

	limitIdx := len(whereArgs) + 2
	query := fmt.Sprintf(
		"SELECT %s FROM articles a %s%s ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d",
		articleColumns, articleJoins, where, limitIdx, limitIdx+1,
	)
	args := append([]any{viewer}, whereArgs...)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, news.Pagination{}, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]news.ArticleView, 0, filter.PerPage)
	for rows.Next() {
		view, err := scanArticleView(rows)
		if err != nil {
			return nil, news.Pagination{}, err
		}
		articles = append(articles, view)
	}
	if err := rows.Err(); err != nil {
		return nil, news.Pagination{}, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, news.NewPagination(filter.Page, filter.PerPage, total), nil
}

// buildArticleWhere renders the filter as a WHERE clause with placeholders
// starting at startIdx.
func (s *Store) buildArticleWhere(filter news.ArticleFilter, startIdx int) (string, []any) {
	var conds []string
	var args []any
	next := func() int { return startIdx + len(args) }

	if filter.Category != "" && filter.Category != "all" {
		conds = append(conds, fmt.Sprintf("a.category = $%d", next()))
		args = append(args, filter.Category)
	}
	if len(filter.Sources) > 0 {
		ors := make([]string, 0, len(filter.Sources))
		for _, src := range filter.Sources {
			src = strings.TrimSpace(src)
			if src == "" {
				continue
			}
			ors = append(ors, fmt.Sprintf("a.source_name ILIKE $%d", next()))
			args = append(args, "%"+src+"%")
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if filter.DateRangeToday {
		// Matches the stored free-form publish-date prefix against today's
		// DD-MM-YYYY; a differently formatted string silently matches nothing.
		conds = append(conds, fmt.Sprintf("a.publish_date LIKE $%d", next()))
		args = append(args, s.now().Format("02-01-2006")+"%")
	}
	if filter.Search != "" {
		idx := next()
		conds = append(conds, fmt.Sprintf("(a.headline ILIKE $%d OR a.source_name ILIKE $%d)", idx, idx+1))
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetArticle returns one annotated article with its related-article list.
func (s *Store) GetArticle(ctx context.Context, id int64, viewer *int64) (news.ArticleDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM articles a %s WHERE a.id = $2", articleColumns, articleJoins)
	view, err := scanArticleView(s.pool.QueryRow(ctx, query, viewer, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return news.ArticleDetail{}, news.ErrNotFound
	}
	if err != nil {
		return news.ArticleDetail{}, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, headline, author, article_link, source_logo, source_name, publish_date
		 FROM related_articles WHERE primary_article_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return news.ArticleDetail{}, fmt.Errorf("list related articles: %w", err)
	}
	defer rows.Close()

	related := make([]news.RelatedArticle, 0, 8)
	for rows.Next() {
		var ra news.RelatedArticle
		if err := rows.Scan(&ra.ID, &ra.Headline, &ra.Author, &ra.ArticleLink,
			&ra.SourceLogo, &ra.SourceName, &ra.PublishDate); err != nil {
			return news.ArticleDetail{}, fmt.Errorf("scan related article: %w", err)
		}
		related = append(related, ra)
	}
	if err := rows.Err(); err != nil {
		return news.ArticleDetail{}, fmt.Errorf("iterate related articles: %w", err)
	}

	return news.ArticleDetail{
		ArticleView:          view,
		RelatedArticles:      related,
		TotalRelatedArticles: len(related),
	}, nil
}

// ListCategories returns the distinct categories with article counts.
func (s *Store) ListCategories(ctx context.Context) ([]news.CategoryCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM articles GROUP BY category ORDER BY COUNT(*) DESC, category`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]news.CategoryCount, 0, 16)
	for rows.Next() {
		var cc news.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func scanArticleView(row pgx.Row) (news.ArticleView, error) {
	var (
		view              news.ArticleView
		biased, notBiased int
	)
	err := row.Scan(
		&view.ID, &view.Headline, &view.Author, &view.ArticleLink, &view.FeaturedImage,
		&view.SourceLogo, &view.SourceName, &view.PublishDate, &view.Category, &view.CreatedAt,
		&biased, &notBiased,
		&view.UserVote, &view.IsBookmarked,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return news.ArticleView{}, pgx.ErrNoRows
	}
	if err != nil {
		return news.ArticleView{}, fmt.Errorf("scan article: %w", err)
	}
	view.VoteStats = news.NewVoteStats(biased, notBiased)
	view.TotalVotes = biased + notBiased
	return view, nil
}
