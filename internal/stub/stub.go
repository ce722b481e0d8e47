// Package stub runs an in-process stand-in for the remote knowledge-storage
// service. It implements the wire contract the pipeline deploys against
// (bulk upload, health readback, keyword search) so the deploy and verify
// commands can be exercised without the hosted service. It is a development
// fixture, not a retrieval engine.
package stub

import (
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"factkb/internal/similarity"
	"factkb/models"
)

type uploadRequest struct {
	DataType      string        `json:"data_type"`
	Data          []storedEntry `json:"data"`
	ClearExisting bool          `json:"clear_existing"`
}

// storedEntry mirrors the upload wire shape, with tags as a joined string.
type storedEntry struct {
	ID         int     `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category"`
	State      *string `json:"state"`
	Tags       string  `json:"tags"`
	Priority   string  `json:"priority"`
	Difficulty string  `json:"difficulty"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// Server holds uploaded entries in memory, keyed by id.
type Server struct {
	mu      sync.RWMutex
	entries map[int]storedEntry
	logger  *log.Logger
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[STUB] ", log.LstdFlags)
	}
	return &Server{entries: make(map[int]storedEntry), logger: logger}
}

// Echo builds the HTTP handler with the service's three routes plus
// /metrics.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.POST("/upload-data", s.handleUpload)
	e.GET("/health", s.handleHealth)
	e.POST("/knowledge/search", s.handleSearch)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Printf("stub knowledge service listening on %s", addr)
	return s.Echo().Start(addr)
}

func (s *Server) handleUpload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed upload payload")
	}
	if req.DataType != "knowledge_base" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported data_type")
	}
	s.mu.Lock()
	if req.ClearExisting {
		s.entries = make(map[int]storedEntry, len(req.Data))
	}
	// Keyed by id, so re-uploading a chunk is idempotent.
	for _, e := range req.Data {
		s.entries[e.ID] = e
	}
	total := len(s.entries)
	s.mu.Unlock()
	s.logger.Printf("stored %d entries (total %d)", len(req.Data), total)
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "stored": len(req.Data)})
}

func (s *Server) handleHealth(c echo.Context) error {
	s.mu.RLock()
	total := len(s.entries)
	s.mu.RUnlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"metrics": map[string]interface{}{"enhanced_retriever_entries": total},
	})
}

// handleSearch ranks stored entries by keyword overlap with the query.
// Naive on purpose; it only needs to exercise clients.
func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed search payload")
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	queryWords := similarity.Keywords(req.Query)

	type scored struct {
		entry storedEntry
		hits  int
	}
	var matches []scored
	s.mu.RLock()
	for _, e := range s.entries {
		words := similarity.Keywords(e.Question + " " + e.Answer + " " + e.Tags)
		hits := 0
		for w := range queryWords {
			if _, ok := words[w]; ok {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{entry: e, hits: hits})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].hits != matches[j].hits {
			return matches[i].hits > matches[j].hits
		}
		return matches[i].entry.ID < matches[j].entry.ID
	})
	if len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	results := make([]models.KnowledgeEntry, 0, len(matches))
	for _, m := range matches {
		state := ""
		if m.entry.State != nil {
			state = *m.entry.State
		}
		results = append(results, models.KnowledgeEntry{
			ID:       m.entry.ID,
			Question: m.entry.Question,
			Answer:   m.entry.Answer,
			Category: m.entry.Category,
			State:    state,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}
