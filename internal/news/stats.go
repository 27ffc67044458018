package news

import "math"

// VoteStats is the aggregate bias tally for one article. Percentages sum to
// 100.0 whenever there is at least one vote and are both zero otherwise.
type VoteStats struct {
	Biased              int     `json:"biased"`
	NotBiased           int     `json:"not_biased"`
	BiasedPercentage    float64 `json:"biased_percentage"`
	NotBiasedPercentage float64 `json:"not_biased_percentage"`
}

// NewVoteStats derives percentage fields from raw counts. Zero totals are
// special-cased rather than computed.
func NewVoteStats(biased, notBiased int) VoteStats {
	total := biased + notBiased
	if total == 0 {
		return VoteStats{}
	}
	return VoteStats{
		Biased:              biased,
		NotBiased:           notBiased,
		BiasedPercentage:    BiasRatio(biased, total),
		NotBiasedPercentage: BiasRatio(notBiased, total),
	}
}

// BiasRatio returns part/total as a percentage rounded to one decimal,
// or 0 when total is 0.
func BiasRatio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes total_pages == ceil(totalItems/perPage).
func NewPagination(page, perPage, totalItems int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = (totalItems + perPage - 1) / perPage
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: pages,
	}
}

// OverviewStats backs GET /api/stats/overview.
type OverviewStats struct {
	TotalArticles  int             `json:"total_articles"`
	TotalVotes     int             `json:"total_votes"`
	TotalUsers     int             `json:"total_users"`
	TotalBookmarks int             `json:"total_bookmarks"`
	BiasPercentage float64         `json:"bias_percentage"`
	CategoryStats  []CategoryCount `json:"category_stats"`
}

// SourceVotes is a per-source biased/not-biased tally.
type SourceVotes struct {
	Source    string `json:"source"`
	Biased    int    `json:"biased"`
	NotBiased int    `json:"not_biased"`
}

// CategoryVotes is a per-category tally with the derived bias ratio.
type CategoryVotes struct {
	Category  string  `json:"category"`
	Biased    int     `json:"biased"`
	NotBiased int     `json:"not_biased"`
	BiasRatio float64 `json:"bias_ratio"`
}

// DailyVotes is one day's biased/not-biased vote counts.
type DailyVotes struct {
	Date      string `json:"date"`
	Biased    int    `json:"biased"`
	NotBiased int    `json:"not_biased"`
}

// DailyCount is one day's count of some event.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// VotingStats backs GET /api/stats/voting.
type VotingStats struct {
	VotesBySource   []SourceVotes   `json:"votes_by_source"`
	VotesByCategory []CategoryVotes `json:"votes_by_category"`
	VotesOverTime   []DailyVotes    `json:"votes_over_time"`
}

// SourceCount is a per-source count of some event.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// BiasDistribution is a biased/not-biased split.
type BiasDistribution struct {
	Biased    int `json:"biased"`
	NotBiased int `json:"not_biased"`
}

// BookmarkStats backs GET /api/stats/bookmarks.
type BookmarkStats struct {
	BookmarksByCategory        []CategoryCount  `json:"bookmarks_by_category"`
	BookmarksBySource          []SourceCount    `json:"bookmarks_by_source"`
	BookmarksOverTime          []DailyCount     `json:"bookmarks_over_time"`
	BookmarkedBiasDistribution BiasDistribution `json:"bookmarked_bias_distribution"`
}

// SourceBias is a per-source bias summary used by the rankings.
type SourceBias struct {
	Source         string  `json:"source"`
	ArticleCount   int     `json:"article_count"`
	TotalVotes     int     `json:"total_votes"`
	BiasedVotes    int     `json:"biased_votes"`
	NotBiasedVotes int     `json:"not_biased_votes"`
	BiasRatio      float64 `json:"bias_ratio"`
}

// SourceStats backs GET /api/stats/sources. Ranked lists exclude sources
// below the configured minimum vote threshold.
type SourceStats struct {
	BiasBySource        []SourceBias `json:"bias_by_source"`
	MostLovedSources    []SourceBias `json:"most_loved_sources"`
	LeastTrustedSources []SourceBias `json:"least_trusted_sources"`
}

// CategoryStats backs GET /api/stats/categories.
type CategoryStats struct {
	Categories     []CategoryCount `json:"categories"`
	BiasByCategory []CategoryVotes `json:"bias_by_category"`
}

// AuthorBias is a per-author bias summary.
type AuthorBias struct {
	Author     string  `json:"author"`
	TotalVotes int     `json:"total_votes"`
	BiasRatio  float64 `json:"bias_ratio"`
}

// AuthorStats backs GET /api/stats/authors.
type AuthorStats struct {
	AuthorBias []AuthorBias `json:"author_bias"`
}

// CategoryEngagement is per-category vote and bookmark volume.
type CategoryEngagement struct {
	Category  string `json:"category"`
	Votes     int    `json:"votes"`
	Bookmarks int    `json:"bookmarks"`
}

// UserEngagement ranks a user by combined votes and bookmarks.
type UserEngagement struct {
	Username  string `json:"username"`
	Votes     int    `json:"votes"`
	Bookmarks int    `json:"bookmarks"`
}

// EngagementStats backs GET /api/stats/engagement; daily series cover a
// trailing 30-day window.
type EngagementStats struct {
	DailyVotes           []DailyCount         `json:"daily_votes"`
	DailyBookmarks       []DailyCount         `json:"daily_bookmarks"`
	DailyRegistrations   []DailyCount         `json:"daily_registrations"`
	EngagementByCategory []CategoryEngagement `json:"engagement_by_category"`
	MostEngagedUsers     []UserEngagement     `json:"most_engaged_users"`
}
