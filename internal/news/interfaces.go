package news

import "context"

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser inserts a new account; returns ErrConflict when the
	// username or email is already taken.
	CreateUser(ctx context.Context, username, email, passwordHash string) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)
}

// ArticleStore serves the read side of the article catalog.
type ArticleStore interface {
	// ListArticles returns one page of articles matching the filter,
	// newest-created first, annotated for the viewer when non-nil.
	ListArticles(ctx context.Context, filter ArticleFilter, viewer *int64) ([]ArticleView, Pagination, error)
	GetArticle(ctx context.Context, id int64, viewer *int64) (ArticleDetail, error)
	ListCategories(ctx context.Context) ([]CategoryCount, error)
}

// VoteStore persists bias votes, one row per (user, article).
type VoteStore interface {
	// UpsertVote inserts or overwrites the caller's vote atomically and
	// returns the article's refreshed stats. ErrNotFound for unknown
	// articles.
	UpsertVote(ctx context.Context, userID, articleID int64, isBiased bool) (VoteStats, error)
	// DeleteVote removes the caller's vote; ErrNotFound when none existed.
	DeleteVote(ctx context.Context, userID, articleID int64) (VoteStats, error)
}

// BookmarkStore persists bookmarks, one row per (user, article).
type BookmarkStore interface {
	// AddBookmark is idempotent; created is false when the bookmark
	// already existed. ErrNotFound for unknown articles.
	AddBookmark(ctx context.Context, userID, articleID int64) (created bool, err error)
	// RemoveBookmark is idempotent; removed is false when no bookmark
	// existed.
	RemoveBookmark(ctx context.Context, userID, articleID int64) (removed bool, err error)
	ListBookmarks(ctx context.Context, userID int64, page, perPage int) ([]BookmarkedArticle, Pagination, error)
	UserActivity(ctx context.Context, userID int64) (UserActivity, error)
}

// StatsStore serves the read-only aggregate dashboards.
type StatsStore interface {
	OverviewStats(ctx context.Context) (OverviewStats, error)
	VotingStats(ctx context.Context) (VotingStats, error)
	BookmarkStats(ctx context.Context) (BookmarkStats, error)
	SourceStats(ctx context.Context, minVotes int) (SourceStats, error)
	CategoryStats(ctx context.Context) (CategoryStats, error)
	AuthorStats(ctx context.Context, minVotes int) (AuthorStats, error)
	EngagementStats(ctx context.Context) (EngagementStats, error)
}

// IngestStore is the write side used by the bulk loader.
type IngestStore interface {
	// InsertScrapedItems inserts the items that pass validation and are
	// not already present (by article link), committing in fixed-size
	// batches. It reports how many articles were inserted and how many
	// were skipped as duplicates.
	InsertScrapedItems(ctx context.Context, category string, items []ScrapedItem, batchSize int) (inserted, skipped int, err error)
}

// Store is the full persistence surface the API server depends on.
type Store interface {
	UserStore
	ArticleStore
	VoteStore
	BookmarkStore
	StatsStore

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
}
