package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/news"
)

const (
	defaultPage    = 1
	defaultPerPage = 20
	maxPerPage     = 100
)

type articlesResponse struct {
	Articles   []news.ArticleView `json:"articles"`
	Pagination news.Pagination    `json:"pagination"`
}

type articleResponse struct {
	Article news.ArticleDetail `json:"article"`
}

type categoriesResponse struct {
	Categories []news.CategoryCount `json:"categories"`
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	articles, pagination, err := s.store.ListArticles(r.Context(), filter, viewerFrom(r.Context()))
	if err != nil {
		s.logger.Error("list articles failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if articles == nil {
		articles = []news.ArticleView{}
	}
	s.writeJSON(w, http.StatusOK, articlesResponse{Articles: articles, Pagination: pagination})
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	article, err := s.store.GetArticle(r.Context(), id, viewerFrom(r.Context()))
	if err != nil {
		s.writeStoreError(w, err, "article not found")
		return
	}
	s.writeJSON(w, http.StatusOK, articleResponse{Article: article})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if categories == nil {
		categories = []news.CategoryCount{}
	}
	s.writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "article_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// filterFromQuery maps the listing query parameters onto a filter,
// normalizing the "all" pseudo-category and clamping pagination.
func filterFromQuery(r *http.Request) news.ArticleFilter {
	q := r.URL.Query()
	filter := news.ArticleFilter{
		Category:       q.Get("category"),
		Search:         q.Get("search"),
		DateRangeToday: q.Get("dateRange") == "today",
		Page:           intParam(q.Get("page"), defaultPage),
		PerPage:        intParam(q.Get("per_page"), defaultPerPage),
	}
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}
	if raw := q.Get("sources"); raw != "" {
		for _, src := range strings.Split(raw, ",") {
			if src = strings.TrimSpace(src); src != "" {
				filter.Sources = append(filter.Sources, src)
			}
		}
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
	return filter
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
