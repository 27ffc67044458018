package scraper

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// FetcherConfig controls the HTTP fetch path.
type FetcherConfig struct {
	// UserAgents is the pool a random agent is drawn from per request.
	UserAgents     []string
	RequestTimeout time.Duration
	Concurrency    int
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// CollyFetcher retrieves pages via a shared Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	userAgents    []string
	logger        *zap.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewCollyFetcher constructs a configured Colly-based fetcher.
func NewCollyFetcher(cfg FetcherConfig, logger *zap.Logger) (*CollyFetcher, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = []string{defaultUserAgent}
	}

	base := colly.NewCollector(colly.Async(true))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		MaxConnsPerHost:       cfg.Concurrency * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Concurrency,
		Delay:       500 * time.Millisecond,
	}); err != nil {
		return nil, err
	}

	return &CollyFetcher{
		baseCollector: base,
		userAgents:    agents,
		logger:        logger,
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (f *CollyFetcher) userAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userAgents[f.rand.Intn(len(f.userAgents))]
}

// Fetch retrieves a page with a User-Agent drawn from the configured pool.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	collector := f.baseCollector.Clone()
	collector.UserAgent = f.userAgent()

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		page := Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}
		send(fetchResult{page: page})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		return res.page, res.err
	default:
		return Page{}, errors.New("colly fetch produced no result")
	}
}

type fetchResult struct {
	page Page
	err  error
}
