// Package cache provides the in-memory report cache that links memo
// generation to PDF export.
package cache

import (
	"sync"
	"time"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// DefaultMaxReports is the flush threshold used when none is configured
const DefaultMaxReports = 100

// ReportCache maps issued report ids to generated markdown.
// When an insert takes the count past maxReports, every entry except the
// new one is dropped. Thread-safe with sync.RWMutex.
type ReportCache struct {
	mu         sync.RWMutex
	reports    map[string]models.Report
	maxReports int
	newID      func() string
	now        func() time.Time
	logger     arbor.ILogger
}

// Option configures a ReportCache
type Option func(*ReportCache)

// WithIDFunc overrides the id generator
func WithIDFunc(fn func() string) Option {
	return func(c *ReportCache) {
		c.newID = fn
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *ReportCache) {
		c.now = now
	}
}

// NewReportCache creates a cache that flushes once more than maxReports are held
func NewReportCache(maxReports int, logger arbor.ILogger, opts ...Option) *ReportCache {
	if maxReports <= 0 {
		maxReports = DefaultMaxReports
	}
	c := &ReportCache{
		reports:    make(map[string]models.Report),
		maxReports: maxReports,
		newID:      common.NewReportID,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store saves markdown under a new id and returns the id
func (c *ReportCache) Store(markdown string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.newID()
	for _, exists := c.reports[id]; exists; _, exists = c.reports[id] {
		id = c.newID()
	}

	now := c.now()
	c.reports[id] = models.Report{
		ID:        id,
		Markdown:  markdown,
		CreatedAt: now,
	}

	if len(c.reports) > c.maxReports {
		dropped := len(c.reports) - 1
		oldest := now
		for key, report := range c.reports {
			if key == id {
				continue
			}
			if report.CreatedAt.Before(oldest) {
				oldest = report.CreatedAt
			}
			delete(c.reports, key)
		}
		if c.logger != nil {
			c.logger.Info().
				Int("dropped", dropped).
				Int("max_reports", c.maxReports).
				Dur("oldest_age", now.Sub(oldest)).
				Msg("Report cache flushed")
		}
	}

	return id
}

// Retrieve returns the markdown stored under id
func (c *ReportCache) Retrieve(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report, ok := c.reports[id]
	if !ok {
		return "", false
	}
	return report.Markdown, true
}

// Clear drops every cached report
func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = make(map[string]models.Report)
}

// Len returns the number of cached reports
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}
