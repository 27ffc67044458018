// Package seed fills the database with demonstration users, votes, and
// bookmarks so the catalog and dashboards have activity to show.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/auth"
	"github.com/netra-news/backend/internal/news"
)

// Store is the persistence surface the seeder writes through.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (news.User, error)
	ListArticles(ctx context.Context, filter news.ArticleFilter, viewer *int64) ([]news.ArticleView, news.Pagination, error)
	UpsertVote(ctx context.Context, userID, articleID int64, isBiased bool) (news.VoteStats, error)
	AddBookmark(ctx context.Context, userID, articleID int64) (created bool, err error)
}

// Config controls how much demo activity a run generates.
type Config struct {
	Users        int
	Password     string
	MinVotes     int
	MaxVotes     int
	MinBookmarks int
	MaxBookmarks int
	// Seed fixes the random source; 0 uses the clock.
	Seed int64
}

// Summary reports what one run created.
type Summary struct {
	UsersCreated   int
	VotesCast      int
	BookmarksAdded int
}

// Seeder generates demo users and spreads their votes and bookmarks over
// the existing article catalog.
type Seeder struct {
	store  Store
	logger *zap.Logger
	cfg    Config
	rng    *rand.Rand
}

var firstNames = []string{
	"Aarav", "Ananya", "Arjun", "Diya", "Ishaan", "Kavya", "Krishna", "Meera",
	"Neha", "Priya", "Rahul", "Riya", "Rohan", "Saanvi", "Vikram", "Zara",
	"David", "James", "Linda", "Sarah",
}

var lastNames = []string{
	"Sharma", "Verma", "Gupta", "Singh", "Kumar", "Patel", "Mehta", "Reddy",
	"Nair", "Iyer", "Rao", "Das", "Sen", "Joshi",
	"Smith", "Johnson", "Brown", "Lee",
}

var emailDomains = []string{
	"gmail.com", "yahoo.com", "outlook.com", "protonmail.com",
}

// New builds a seeder; zero config fields fall back to defaults matching
// a small demo database.
func New(store Store, logger *zap.Logger, cfg Config) *Seeder {
	if cfg.Users <= 0 {
		cfg.Users = 50
	}
	if cfg.Password == "" {
		cfg.Password = "demo123"
	}
	if cfg.MinVotes <= 0 {
		cfg.MinVotes = 10
	}
	if cfg.MaxVotes < cfg.MinVotes {
		cfg.MaxVotes = 40
	}
	if cfg.MinBookmarks <= 0 {
		cfg.MinBookmarks = 3
	}
	if cfg.MaxBookmarks < cfg.MinBookmarks {
		cfg.MaxBookmarks = 15
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		store:  store,
		logger: logger,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run creates the demo users and their activity. It refuses to run
// against an empty catalog since votes and bookmarks need articles.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	articles, err := s.catalog(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(articles) == 0 {
		return Summary{}, fmt.Errorf("no articles to seed against; run the loader first")
	}
	s.logger.Info("seeding demo activity",
		zap.Int("articles", len(articles)),
		zap.Int("users", s.cfg.Users),
	)

	// All demo users share one password, so one hash suffices.
	hash, err := auth.HashPassword(s.cfg.Password)
	if err != nil {
		return Summary{}, fmt.Errorf("hash demo password: %w", err)
	}

	// Sources lean one way or the other so the dashboards show spread
	// rather than a uniform 50/50.
	tendency := make(map[string]float64)
	for _, a := range articles {
		if _, ok := tendency[a.SourceName]; !ok {
			tendency[a.SourceName] = 0.25 + s.rng.Float64()*0.5
		}
	}

	var summary Summary
	for i := 0; i < s.cfg.Users; i++ {
		user, err := s.createUser(ctx, i, hash)
		if errors.Is(err, news.ErrConflict) {
			continue
		}
		if err != nil {
			return summary, err
		}
		summary.UsersCreated++

		votes, err := s.castVotes(ctx, user.ID, articles, tendency)
		if err != nil {
			return summary, err
		}
		summary.VotesCast += votes

		bookmarks, err := s.addBookmarks(ctx, user.ID, articles)
		if err != nil {
			return summary, err
		}
		summary.BookmarksAdded += bookmarks
	}

	s.logger.Info("seeding complete",
		zap.Int("users_created", summary.UsersCreated),
		zap.Int("votes_cast", summary.VotesCast),
		zap.Int("bookmarks_added", summary.BookmarksAdded),
	)
	return summary, nil
}

// catalog pages through the full article listing.
func (s *Seeder) catalog(ctx context.Context) ([]news.ArticleView, error) {
	const perPage = 100

	var all []news.ArticleView
	for page := 1; ; page++ {
		views, pagination, err := s.store.ListArticles(ctx,
			news.ArticleFilter{Page: page, PerPage: perPage}, nil)
		if err != nil {
			return nil, fmt.Errorf("list articles page %d: %w", page, err)
		}
		all = append(all, views...)
		if page >= pagination.TotalPages {
			return all, nil
		}
	}
}

// createUser inserts one demo account, retrying with fresh names when a
// generated username or email is already taken.
func (s *Seeder) createUser(ctx context.Context, index int, passwordHash string) (news.User, error) {
	const attempts = 10

	var lastErr error
	for a := 0; a < attempts; a++ {
		username := s.username(index)
		email := fmt.Sprintf("%s@%s", username, emailDomains[s.rng.Intn(len(emailDomains))])
		user, err := s.store.CreateUser(ctx, username, email, passwordHash)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, news.ErrConflict) {
			return news.User{}, fmt.Errorf("create demo user %q: %w", username, err)
		}
		lastErr = err
	}
	return news.User{}, lastErr
}

func (s *Seeder) username(index int) string {
	first := strings.ToLower(firstNames[s.rng.Intn(len(firstNames))])
	last := strings.ToLower(lastNames[s.rng.Intn(len(lastNames))])
	switch s.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("%s%s%d", first, last, s.rng.Intn(99)+1)
	case 1:
		return fmt.Sprintf("%s_%s", first, last)
	case 2:
		return fmt.Sprintf("%s.%s", last, first)
	default:
		return fmt.Sprintf("%s%s%d", first[:3], last, index)
	}
}

func (s *Seeder) castVotes(ctx context.Context, userID int64, articles []news.ArticleView, tendency map[string]float64) (int, error) {
	count := s.between(s.cfg.MinVotes, s.cfg.MaxVotes)
	cast := 0
	for _, idx := range s.sample(len(articles), count) {
		article := articles[idx]
		lean := tendency[article.SourceName] + (s.rng.Float64()*0.4 - 0.2)
		isBiased := s.rng.Float64() < lean
		if _, err := s.store.UpsertVote(ctx, userID, article.ID, isBiased); err != nil {
			return cast, fmt.Errorf("seed vote on article %d: %w", article.ID, err)
		}
		cast++
	}
	return cast, nil
}

func (s *Seeder) addBookmarks(ctx context.Context, userID int64, articles []news.ArticleView) (int, error) {
	count := s.between(s.cfg.MinBookmarks, s.cfg.MaxBookmarks)
	added := 0
	for _, idx := range s.sample(len(articles), count) {
		created, err := s.store.AddBookmark(ctx, userID, articles[idx].ID)
		if err != nil {
			return added, fmt.Errorf("seed bookmark on article %d: %w", articles[idx].ID, err)
		}
		if created {
			added++
		}
	}
	return added, nil
}

// sample returns up to count distinct indexes in [0, n).
func (s *Seeder) sample(n, count int) []int {
	if count > n {
		count = n
	}
	return s.rng.Perm(n)[:count]
}

func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}
