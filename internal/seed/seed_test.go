package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/news"
)

// fakeStore records the demo activity a run generates.
type fakeStore struct {
	articles       []news.ArticleView
	rejectCreates  int
	pagesRequested []int

	users     []string
	votes     map[string]bool
	bookmarks map[string]struct{}
}

func newFakeStore(articleCount int) *fakeStore {
	s := &fakeStore{
		votes:     map[string]bool{},
		bookmarks: map[string]struct{}{},
	}
	for i := 1; i <= articleCount; i++ {
		s.articles = append(s.articles, news.ArticleView{
			Article: news.Article{
				ID:         int64(i),
				Headline:   fmt.Sprintf("Headline %d", i),
				SourceName: fmt.Sprintf("Source %d", i%3),
			},
		})
	}
	return s
}

func (s *fakeStore) CreateUser(_ context.Context, username, email, _ string) (news.User, error) {
	if s.rejectCreates > 0 {
		s.rejectCreates--
		return news.User{}, news.ErrConflict
	}
	for _, u := range s.users {
		if u == username {
			return news.User{}, news.ErrConflict
		}
	}
	s.users = append(s.users, username)
	return news.User{ID: int64(len(s.users)), Username: username, Email: email}, nil
}

func (s *fakeStore) ListArticles(_ context.Context, filter news.ArticleFilter, _ *int64) ([]news.ArticleView, news.Pagination, error) {
	s.pagesRequested = append(s.pagesRequested, filter.Page)
	start := (filter.Page - 1) * filter.PerPage
	if start >= len(s.articles) {
		return nil, news.NewPagination(filter.Page, filter.PerPage, len(s.articles)), nil
	}
	end := start + filter.PerPage
	if end > len(s.articles) {
		end = len(s.articles)
	}
	return s.articles[start:end], news.NewPagination(filter.Page, filter.PerPage, len(s.articles)), nil
}

func (s *fakeStore) UpsertVote(_ context.Context, userID, articleID int64, isBiased bool) (news.VoteStats, error) {
	s.votes[fmt.Sprintf("%d:%d", userID, articleID)] = isBiased
	return news.VoteStats{}, nil
}

func (s *fakeStore) AddBookmark(_ context.Context, userID, articleID int64) (bool, error) {
	key := fmt.Sprintf("%d:%d", userID, articleID)
	if _, ok := s.bookmarks[key]; ok {
		return false, nil
	}
	s.bookmarks[key] = struct{}{}
	return true, nil
}

func TestRunSeedsUsersVotesAndBookmarks(t *testing.T) {
	t.Parallel()

	store := newFakeStore(6)
	seeder := New(store, zap.NewNop(), Config{Users: 5, Seed: 1})

	summary, err := seeder.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 5, summary.UsersCreated)
	require.Len(t, store.users, 5)

	// Six articles cap each user's sample, so every user votes on all of
	// them and bookmarks between three and six.
	require.Equal(t, 30, summary.VotesCast)
	require.Len(t, store.votes, 30)
	require.Equal(t, len(store.bookmarks), summary.BookmarksAdded)
	require.GreaterOrEqual(t, summary.BookmarksAdded, 15)
	require.LessOrEqual(t, summary.BookmarksAdded, 30)
}

func TestRunFailsWithoutArticles(t *testing.T) {
	t.Parallel()

	seeder := New(newFakeStore(0), zap.NewNop(), Config{Users: 3, Seed: 1})

	_, err := seeder.Run(context.Background())
	require.ErrorContains(t, err, "no articles")
}

func TestRunRetriesTakenUsernames(t *testing.T) {
	t.Parallel()

	store := newFakeStore(6)
	store.rejectCreates = 2
	seeder := New(store, zap.NewNop(), Config{Users: 3, Seed: 7})

	summary, err := seeder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.UsersCreated)
}

func TestRunPagesThroughCatalog(t *testing.T) {
	t.Parallel()

	store := newFakeStore(150)
	seeder := New(store, zap.NewNop(), Config{Users: 1, Seed: 1})

	_, err := seeder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, store.pagesRequested)
}
