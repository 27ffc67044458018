// Package news defines the domain types and storage interfaces for the
// aggregation platform: users, scraped articles, bias votes, bookmarks,
// and the aggregate views the statistics endpoints serve.
package news

import "time"

// User is a registered account. PasswordHash never leaves the backend.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Article is one scraped news item. ArticleLink uniqueness is enforced at
// ingestion time only; PublishDate is stored as the free-form string the
// source site published.
type Article struct {
	ID            int64     `json:"id"`
	Headline      string    `json:"headline"`
	Author        string    `json:"author"`
	ArticleLink   string    `json:"article_link"`
	FeaturedImage string    `json:"featured_image"`
	SourceLogo    string    `json:"source_logo"`
	SourceName    string    `json:"source_name"`
	PublishDate   string    `json:"publish_date"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

// RelatedArticle is a sibling record scraped alongside a primary article.
type RelatedArticle struct {
	ID          int64  `json:"id"`
	Headline    string `json:"headline"`
	Author      string `json:"author"`
	ArticleLink string `json:"article_link"`
	SourceLogo  string `json:"source_logo"`
	SourceName  string `json:"source_name"`
	PublishDate string `json:"publish_date"`
}

// ArticleView is an article annotated for a particular viewer. UserVote and
// IsBookmarked are only populated when the request carried a valid token;
// anonymous viewers get null/false.
type ArticleView struct {
	Article
	VoteStats  VoteStats `json:"vote_stats"`
	TotalVotes int       `json:"total_votes"`

	UserVote     *bool `json:"user_vote"`
	IsBookmarked bool  `json:"is_bookmarked"`
}

// ArticleDetail adds the full related-article list to an ArticleView.
type ArticleDetail struct {
	ArticleView
	RelatedArticles      []RelatedArticle `json:"related_articles"`
	TotalRelatedArticles int              `json:"total_related_articles"`
}

// BookmarkedArticle is an ArticleView plus the bookmark's own creation time.
type BookmarkedArticle struct {
	ArticleView
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// ArticleFilter captures the query parameters of the listing endpoint.
// Category "" or "all" means no category restriction. Sources are matched
// as a logical OR of case-insensitive substrings. DateRangeToday matches
// the stored publish-date string prefix against today's DD-MM-YYYY; when
// the stored format differs the filter silently matches nothing.
type ArticleFilter struct {
	Category       string
	Search         string
	Sources        []string
	DateRangeToday bool
	Page           int
	PerPage        int
}

// UserActivity summarizes a user's votes and bookmarks.
type UserActivity struct {
	TotalVotes     int `json:"total_votes"`
	BiasedVotes    int `json:"biased_votes"`
	NotBiasedVotes int `json:"not_biased_votes"`
	BookmarkCount  int `json:"bookmark_count"`
}

// CategoryCount is a category name with how many rows fall in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ScrapedArticle is the flat article object inside the ingestion envelope.
type ScrapedArticle struct {
	Headline      string `json:"headline"`
	Author        string `json:"author"`
	ArticleLink   string `json:"article_link"`
	FeaturedImage string `json:"featured_image,omitempty"`
	SourceLogo    string `json:"source_logo,omitempty"`
	SourceName    string `json:"source_name,omitempty"`
	PublishDate   string `json:"publish_date,omitempty"`
}

// ScrapedItem is one entry of a category ingestion file.
type ScrapedItem struct {
	PrimaryArticle  ScrapedArticle   `json:"primary_article"`
	RelatedArticles []ScrapedArticle `json:"related_articles"`
}
