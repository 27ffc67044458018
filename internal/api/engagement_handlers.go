package api

import (
	"encoding/json"
	"net/http"

	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
)

type voteRequest struct {
	IsBiased *bool `json:"is_biased"`
}

type voteResponse struct {
	VoteStats news.VoteStats `json:"vote_stats"`
}

type bookmarkResponse struct {
	AlreadyBookmarked bool `json:"already_bookmarked"`
}

type removeBookmarkResponse struct {
	Removed bool `json:"removed"`
}

type bookmarksResponse struct {
	Bookmarks  []news.BookmarkedArticle `json:"bookmarks"`
	Pagination news.Pagination          `json:"pagination"`
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsBiased == nil {
		s.writeError(w, http.StatusBadRequest, "is_biased is required")
		return
	}

	stats, err := s.store.UpsertVote(r.Context(), mustUserID(r.Context()), id, *req.IsBiased)
	if err != nil {
		s.writeStoreError(w, err, "article not found")
		return
	}
	metrics.ObserveVote(*req.IsBiased)
	s.writeJSON(w, http.StatusOK, voteResponse{VoteStats: stats})
}

func (s *Server) removeVote(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	stats, err := s.store.DeleteVote(r.Context(), mustUserID(r.Context()), id)
	if err != nil {
		s.writeStoreError(w, err, "no vote to remove")
		return
	}
	s.writeJSON(w, http.StatusOK, voteResponse{VoteStats: stats})
}

func (s *Server) addBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	created, err := s.store.AddBookmark(r.Context(), mustUserID(r.Context()), id)
	if err != nil {
		s.writeStoreError(w, err, "article not found")
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	s.writeJSON(w, status, bookmarkResponse{AlreadyBookmarked: !created})
}

func (s *Server) removeBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	removed, err := s.store.RemoveBookmark(r.Context(), mustUserID(r.Context()), id)
	if err != nil {
		s.writeStoreError(w, err, "article not found")
		return
	}
	s.writeJSON(w, http.StatusOK, removeBookmarkResponse{Removed: removed})
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), defaultPage)
	perPage := intParam(q.Get("per_page"), defaultPerPage)
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	bookmarks, pagination, err := s.store.ListBookmarks(r.Context(), mustUserID(r.Context()), page, perPage)
	if err != nil {
		s.writeStoreError(w, err, "bookmarks not found")
		return
	}
	if bookmarks == nil {
		bookmarks = []news.BookmarkedArticle{}
	}
	s.writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: bookmarks, Pagination: pagination})
}

func (s *Server) userActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.store.UserActivity(r.Context(), mustUserID(r.Context()))
	if err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, activity)
}
