package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/netra-news/backend/internal/news"
)

// InsertScrapedItems inserts scraped articles for one category, deduplicating
// by article link and committing every batchSize inserts so a failure late in
// a large file does not discard the whole run. Items with no headline or no
// link are skipped without counting as duplicates.
func (s *Store) InsertScrapedItems(ctx context.Context, category string, items []news.ScrapedItem, batchSize int) (inserted, skipped int, err error) {
	if batchSize <= 0 {
		batchSize = 10
	}

	var (
		tx      pgx.Tx
		pending int
	)
	commit := func() error {
		if tx == nil {
			return nil
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit ingest batch: %w", err)
		}
		tx = nil
		pending = 0
		return nil
	}
	defer func() {
		if tx != nil {
			rollback(ctx, tx)
		}
	}()

	for _, item := range items {
		primary := item.PrimaryArticle
		if primary.Headline == "" || primary.ArticleLink == "" {
			continue
		}

		// Check through the open batch so a link repeated within one file
		// still counts as a duplicate.
		var q rowQuerier = s.pool
		if tx != nil {
			q = tx
		}
		var exists bool
		err = q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM articles WHERE article_link = $1)`,
			primary.ArticleLink,
		).Scan(&exists)
		if err != nil {
			return inserted, skipped, fmt.Errorf("check duplicate article: %w", err)
		}
		if exists {
			skipped++
			continue
		}

		if tx == nil {
			tx, err = s.pool.Begin(ctx)
			if err != nil {
				return inserted, skipped, fmt.Errorf("begin ingest batch: %w", err)
			}
		}

		var articleID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO articles
				(headline, author, article_link, featured_image, source_logo, source_name, publish_date, category)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			primary.Headline, primary.Author, primary.ArticleLink,
			primary.FeaturedImage, primary.SourceLogo, primary.SourceName,
			primary.PublishDate, category,
		).Scan(&articleID)
		if err != nil {
			return inserted, skipped, fmt.Errorf("insert article %q: %w", primary.ArticleLink, err)
		}

		for _, rel := range item.RelatedArticles {
			if rel.Headline == "" || rel.ArticleLink == "" {
				continue
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO related_articles
					(primary_article_id, headline, author, article_link, source_logo, source_name, publish_date)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				articleID, rel.Headline, rel.Author, rel.ArticleLink,
				rel.SourceLogo, rel.SourceName, rel.PublishDate,
			)
			if err != nil {
				return inserted, skipped, fmt.Errorf("insert related article %q: %w", rel.ArticleLink, err)
			}
		}

		inserted++
		pending++
		if pending >= batchSize {
			if err = commit(); err != nil {
				return inserted - pending, skipped, err
			}
		}
	}

	if err = commit(); err != nil {
		return inserted - pending, skipped, err
	}
	return inserted, skipped, nil
}
