// Package fakebackend is an in-memory implementation of the PureSearch
// backend contract for local development and tests. Search is a substring
// match over the corpus, classification is a lexical heuristic, and crawl
// jobs advance one state per status poll.
package fakebackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FranksOps/puresearch/internal/api"
)

const (
	// BasePath is where the API is mounted, matching the gateway.
	BasePath = "/api/v1"

	defaultPerPage = 10
	maxPerPage     = 100
	sampleRunes    = 200
)

// Config configures a Server.
type Config struct {
	// Latency is added to every API response.
	Latency time.Duration
	// PagesPerLevel is how many pages a crawl reports per depth level.
	// Defaults to 6.
	PagesPerLevel int
	// Corpus replaces Seed as the initial document set.
	Corpus []api.SearchResult
	Logger *slog.Logger
}

type crawlJob struct {
	url    string
	depth  int
	status api.CrawlStatus
}

// Server holds the backend state.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	docs   []api.SearchResult
	crawls map[string]*crawlJob
}

func New(cfg Config) *Server {
	if cfg.PagesPerLevel <= 0 {
		cfg.PagesPerLevel = 6
	}
	if cfg.Corpus == nil {
		cfg.Corpus = Seed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		docs:   append([]api.SearchResult(nil), cfg.Corpus...),
		crawls: make(map[string]*crawlJob),
	}
}

// Handler returns the gin router serving /health and the API under BasePath.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "fakebackend",
		})
	})

	v1 := router.Group(BasePath, s.delay())
	v1.GET("/search", s.handleSearch)
	v1.POST("/classify", s.handleClassify)
	v1.POST("/index", s.handleIndex)
	v1.POST("/crawl", s.handleCrawl)
	v1.GET("/crawl/status/:id", s.handleCrawlStatus)

	return router
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting fake backend", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("context: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("context: shutdown: %w", err)
	}
	s.logger.Info("fake backend stopped")
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}

func (s *Server) delay() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Latency <= 0 {
			return
		}
		t := time.NewTimer(s.cfg.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-c.Request.Context().Done():
			c.Abort()
		}
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		abortWithError(c, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	page := positiveInt(c.Query("page"), 1)
	perPage := min(positiveInt(c.Query("per_page"), defaultPerPage), maxPerPage)

	matches := s.search(query)
	// Pages past the end are empty; comparing page counts first keeps
	// (page-1)*perPage from overflowing.
	start := len(matches)
	if page-1 < (len(matches)+perPage-1)/perPage {
		start = (page - 1) * perPage
	}
	end := min(start+perPage, len(matches))

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"results":  matches[start:end],
		"total":    len(matches),
		"page":     page,
		"per_page": perPage,
	})
}

// search returns every document whose title, description or URL contains
// one of the query terms, in corpus order.
func (s *Server) search(query string) []api.SearchResult {
	terms := strings.Fields(strings.ToLower(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]api.SearchResult, 0)
	for _, d := range s.docs {
		hay := strings.ToLower(d.Title + " " + d.Description + " " + d.URL)
		for _, t := range terms {
			if strings.Contains(hay, t) {
				matches = append(matches, d)
				break
			}
		}
	}
	return matches
}

type classifyBody struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (s *Server) handleClassify(c *gin.Context) {
	var body classifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		abortWithError(c, http.StatusBadRequest, "text is required")
		return
	}

	v := classify(body.Text)
	c.JSON(http.StatusOK, gin.H{
		"result": gin.H{
			"is_human":   v.isHuman,
			"confidence": v.confidence,
			"analysis": gin.H{
				"length":            v.length,
				"complexity":        v.complexity,
				"patterns_detected": v.patterns,
			},
		},
		"text_sample": sample(body.Text),
		"url":         body.URL,
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	var req api.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validURL(req.URL) {
		abortWithError(c, http.StatusBadRequest, "a valid http(s) url is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		abortWithError(c, http.StatusBadRequest, "content is required")
		return
	}

	v := classify(req.Content)
	doc := api.SearchResult{
		ID:            uuid.NewString(),
		Title:         req.Title,
		URL:           req.URL,
		Description:   req.Description,
		Confidence:    v.confidence,
		PublishedDate: req.PublishedAt,
		ContentType:   req.ContentType,
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	c.JSON(http.StatusOK, api.IndexResponse{
		ID:          doc.ID,
		URL:         doc.URL,
		Title:       doc.Title,
		Description: doc.Description,
		Confidence:  doc.Confidence,
		Indexed:     true,
		Message:     "Content successfully indexed",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

type crawlBody struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

func (s *Server) handleCrawl(c *gin.Context) {
	var body crawlBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validURL(body.URL) {
		abortWithError(c, http.StatusBadRequest, "a valid http(s) url is required")
		return
	}
	if body.Depth < 1 {
		body.Depth = 1
	}

	id := uuid.NewString()
	job := &crawlJob{
		url:    body.URL,
		depth:  body.Depth,
		status: api.CrawlStatus{Status: api.CrawlPending, Message: "Crawl request queued"},
	}

	s.mu.Lock()
	s.crawls[id] = job
	s.mu.Unlock()

	s.logger.Info("crawl queued", "request_id", id, "url", body.URL, "depth", body.Depth)
	c.JSON(http.StatusAccepted, api.CrawlResponse{RequestID: id, Status: job.status})
}

func (s *Server) handleCrawlStatus(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	job, ok := s.crawls[id]
	var status api.CrawlStatus
	if ok {
		s.advance(job)
		status = job.status
	}
	s.mu.Unlock()

	if !ok {
		abortWithError(c, http.StatusNotFound, "crawl request not found")
		return
	}
	c.JSON(http.StatusOK, status)
}

// advance moves a job one step: pending -> in_progress -> completed. Hosts
// under the reserved .invalid TLD fail instead of completing.
// Must be called with mu held.
func (s *Server) advance(job *crawlJob) {
	total := job.depth * s.cfg.PagesPerLevel
	switch job.status.Status {
	case api.CrawlPending:
		job.status = api.CrawlStatus{
			Status:       api.CrawlInProgress,
			Message:      "Crawling",
			CrawledPages: total / 2,
			TotalPages:   total,
		}
	case api.CrawlInProgress:
		if u, err := url.Parse(job.url); err == nil && strings.HasSuffix(u.Hostname(), ".invalid") {
			job.status = api.CrawlStatus{Status: api.CrawlFailed, Message: "could not resolve host " + u.Hostname()}
			return
		}
		job.status = api.CrawlStatus{
			Status:       api.CrawlCompleted,
			Message:      "Crawl finished",
			CrawledPages: total,
			TotalPages:   total,
		}
	}
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func sample(text string) string {
	i := 0
	for pos := range text {
		if i == sampleRunes {
			return text[:pos]
		}
		i++
	}
	return text
}
