package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/auth"
	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
)

// memStore is an in-memory news.Store good enough for handler tests.
type memStore struct {
	users     []news.User
	passwords map[string]string
	articles  map[int64]news.ArticleDetail
	votes     map[string]bool
	bookmarks map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		passwords: map[string]string{},
		articles:  map[int64]news.ArticleDetail{},
		votes:     map[string]bool{},
		bookmarks: map[string]bool{},
	}
}

func key(userID, articleID int64) string {
	return fmt.Sprintf("%d:%d", userID, articleID)
}

func (m *memStore) CreateUser(_ context.Context, username, email, passwordHash string) (news.User, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return news.User{}, news.ErrConflict
		}
	}
	user := news.User{
		ID:        int64(len(m.users) + 1),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}
	m.users = append(m.users, user)
	m.passwords[username] = passwordHash
	return user, nil
}

func (m *memStore) UserByUsername(_ context.Context, username string) (news.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u.PasswordHash = m.passwords[username]
			return u, nil
		}
	}
	return news.User{}, news.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id int64) (news.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return news.User{}, news.ErrNotFound
}

func (m *memStore) ListArticles(_ context.Context, _ news.ArticleFilter, viewer *int64) ([]news.ArticleView, news.Pagination, error) {
	var views []news.ArticleView
	for _, detail := range m.articles {
		view := detail.ArticleView
		if viewer != nil {
			view.IsBookmarked = m.bookmarks[key(*viewer, view.ID)]
			if vote, ok := m.votes[key(*viewer, view.ID)]; ok {
				v := vote
				view.UserVote = &v
			}
		}
		views = append(views, view)
	}
	return views, news.NewPagination(1, 20, len(views)), nil
}

func (m *memStore) GetArticle(_ context.Context, id int64, _ *int64) (news.ArticleDetail, error) {
	detail, ok := m.articles[id]
	if !ok {
		return news.ArticleDetail{}, news.ErrNotFound
	}
	return detail, nil
}

func (m *memStore) ListCategories(context.Context) ([]news.CategoryCount, error) {
	return []news.CategoryCount{{Name: "india", Count: len(m.articles)}}, nil
}

func (m *memStore) voteStats(articleID int64) news.VoteStats {
	var biased, notBiased int
	for k, v := range m.votes {
		var u, a int64
		fmt.Sscanf(k, "%d:%d", &u, &a)
		if a != articleID {
			continue
		}
		if v {
			biased++
		} else {
			notBiased++
		}
	}
	return news.NewVoteStats(biased, notBiased)
}

func (m *memStore) UpsertVote(_ context.Context, userID, articleID int64, isBiased bool) (news.VoteStats, error) {
	if _, ok := m.articles[articleID]; !ok {
		return news.VoteStats{}, news.ErrNotFound
	}
	m.votes[key(userID, articleID)] = isBiased
	return m.voteStats(articleID), nil
}

func (m *memStore) DeleteVote(_ context.Context, userID, articleID int64) (news.VoteStats, error) {
	if _, ok := m.votes[key(userID, articleID)]; !ok {
		return news.VoteStats{}, news.ErrNotFound
	}
	delete(m.votes, key(userID, articleID))
	return m.voteStats(articleID), nil
}

func (m *memStore) AddBookmark(_ context.Context, userID, articleID int64) (bool, error) {
	if _, ok := m.articles[articleID]; !ok {
		return false, news.ErrNotFound
	}
	if m.bookmarks[key(userID, articleID)] {
		return false, nil
	}
	m.bookmarks[key(userID, articleID)] = true
	return true, nil
}

func (m *memStore) RemoveBookmark(_ context.Context, userID, articleID int64) (bool, error) {
	if !m.bookmarks[key(userID, articleID)] {
		return false, nil
	}
	delete(m.bookmarks, key(userID, articleID))
	return true, nil
}

func (m *memStore) ListBookmarks(_ context.Context, userID int64, page, perPage int) ([]news.BookmarkedArticle, news.Pagination, error) {
	var out []news.BookmarkedArticle
	for id, detail := range m.articles {
		if m.bookmarks[key(userID, id)] {
			out = append(out, news.BookmarkedArticle{ArticleView: detail.ArticleView, BookmarkedAt: time.Now()})
		}
	}
	return out, news.NewPagination(page, perPage, len(out)), nil
}

func (m *memStore) UserActivity(_ context.Context, userID int64) (news.UserActivity, error) {
	var activity news.UserActivity
	for k, v := range m.votes {
		var u, a int64
		fmt.Sscanf(k, "%d:%d", &u, &a)
		if u != userID {
			continue
		}
		activity.TotalVotes++
		if v {
			activity.BiasedVotes++
		} else {
			activity.NotBiasedVotes++
		}
	}
	for k, set := range m.bookmarks {
		var u, a int64
		fmt.Sscanf(k, "%d:%d", &u, &a)
		if set && u == userID {
			activity.BookmarkCount++
		}
	}
	return activity, nil
}

func (m *memStore) OverviewStats(context.Context) (news.OverviewStats, error) {
	return news.OverviewStats{
		TotalArticles: len(m.articles),
		TotalUsers:    len(m.users),
		TotalVotes:    len(m.votes),
		CategoryStats: []news.CategoryCount{},
	}, nil
}

func (m *memStore) VotingStats(context.Context) (news.VotingStats, error) {
	return news.VotingStats{}, nil
}

func (m *memStore) BookmarkStats(context.Context) (news.BookmarkStats, error) {
	return news.BookmarkStats{}, nil
}

func (m *memStore) SourceStats(context.Context, int) (news.SourceStats, error) {
	return news.SourceStats{}, nil
}

func (m *memStore) CategoryStats(context.Context) (news.CategoryStats, error) {
	return news.CategoryStats{}, nil
}

func (m *memStore) AuthorStats(context.Context, int) (news.AuthorStats, error) {
	return news.AuthorStats{}, nil
}

func (m *memStore) EngagementStats(context.Context) (news.EngagementStats, error) {
	return news.EngagementStats{}, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

var _ news.Store = (*memStore)(nil)

func newTestServer(t *testing.T) (*Server, *memStore, *auth.Tokens) {
	t.Helper()
	metrics.Init()

	store := newMemStore()
	store.articles[1] = news.ArticleDetail{
		ArticleView: news.ArticleView{
			Article: news.Article{
				ID:         1,
				Headline:   "Parliament passes budget",
				SourceName: "Example News",
				Category:   "india",
			},
		},
	}
	tokens := auth.NewTokens("test-secret", time.Hour)
	srv := NewServer(store, tokens, zap.NewNop(), Config{MinSourceVotes: 3, RequestTimeout: 5 * time.Second})
	return srv, store, tokens
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv *Server, username string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndMeRoundTrip(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	rec = doJSON(t, srv, http.MethodGet, "/api/auth/me", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me userResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	require.Equal(t, "alice", me.User.Username)
}

func TestMeRequiresToken(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListArticlesAnonymous(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/articles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp articlesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Articles, 1)
	require.Nil(t, resp.Articles[0].UserVote)
	require.False(t, resp.Articles[0].IsBookmarked)
}

func TestListArticlesRejectsBadToken(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/articles", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/articles/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/articles/abc", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoteLifecycle(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/articles/1/vote", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/articles/1/vote", token, map[string]any{"is_biased": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp voteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.VoteStats.Biased)
	require.InDelta(t, 100.0, resp.VoteStats.BiasedPercentage, 0.001)

	rec = doJSON(t, srv, http.MethodDelete, "/api/articles/1/vote", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/articles/1/vote", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevoteOverwritesInsteadOfAccumulating(t *testing.T) {
	t.Parallel()

	srv, store, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/articles/1/vote", token, map[string]any{"is_biased": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/articles/1/vote", token, map[string]any{"is_biased": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp voteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 0, resp.VoteStats.Biased)
	require.Equal(t, 1, resp.VoteStats.NotBiased)
	require.InDelta(t, 100.0, resp.VoteStats.NotBiasedPercentage, 0.001)
	require.Len(t, store.votes, 1)
}

func TestVoteUnknownArticle(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/articles/999/vote", token, map[string]any{"is_biased": false})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookmarkIdempotency(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/articles/1/bookmark", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"already_bookmarked":false}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/articles/1/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"already_bookmarked":true}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodDelete, "/api/articles/1/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed":true}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodDelete, "/api/articles/1/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed":false}`, rec.Body.String())
}

func TestUserActivity(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/articles/1/vote", token, map[string]any{"is_biased": true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/articles/1/bookmark", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/user/activity", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var activity news.UserActivity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&activity))
	require.Equal(t, 1, activity.TotalVotes)
	require.Equal(t, 1, activity.BiasedVotes)
	require.Equal(t, 1, activity.BookmarkCount)
}

func TestStatsEndpointsRespond(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	for _, path := range []string{
		"/api/stats/overview",
		"/api/stats/voting",
		"/api/stats/bookmarks",
		"/api/stats/sources",
		"/api/stats/categories",
		"/api/stats/authors",
		"/api/stats/engagement",
	} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
