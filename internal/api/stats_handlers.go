package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (s *Server) overviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.OverviewStats(r.Context())
	if err != nil {
		s.statsError(w, "overview", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) votingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.VotingStats(r.Context())
	if err != nil {
		s.statsError(w, "voting", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) bookmarkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.BookmarkStats(r.Context())
	if err != nil {
		s.statsError(w, "bookmarks", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) sourceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.SourceStats(r.Context(), s.cfg.MinSourceVotes)
	if err != nil {
		s.statsError(w, "sources", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) categoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CategoryStats(r.Context())
	if err != nil {
		s.statsError(w, "categories", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) authorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.AuthorStats(r.Context(), s.cfg.MinSourceVotes)
	if err != nil {
		s.statsError(w, "authors", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) engagementStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.EngagementStats(r.Context())
	if err != nil {
		s.statsError(w, "engagement", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) statsError(w http.ResponseWriter, dashboard string, err error) {
	s.logger.Error("stats query failed", zap.String("dashboard", dashboard), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}
