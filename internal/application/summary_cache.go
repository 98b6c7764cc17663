package application

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/internlog/internal/report"
)

const (
	defaultSummaryCacheSize = 24
	defaultSummaryCacheTTL  = 5 * time.Minute
)

// SummaryCache keeps recently computed monthly summaries until a task write
// purges them or their TTL passes. A nil cache never hits.
type SummaryCache struct {
	entries *expirable.LRU[string, report.Summary]
}

// NewSummaryCache builds a cache holding at most size months for ttl.
func NewSummaryCache(size int, ttl time.Duration) *SummaryCache {
	if size <= 0 {
		size = defaultSummaryCacheSize
	}
	if ttl <= 0 {
		ttl = defaultSummaryCacheTTL
	}
	return &SummaryCache{entries: expirable.NewLRU[string, report.Summary](size, nil, ttl)}
}

// Get returns the cached summary for a period.
func (c *SummaryCache) Get(month, year int) (report.Summary, bool) {
	if c == nil {
		return report.Summary{}, false
	}
	return c.entries.Get(summaryKey(month, year))
}

// Store records the summary for a period.
func (c *SummaryCache) Store(month, year int, summary report.Summary) {
	if c == nil {
		return
	}
	c.entries.Add(summaryKey(month, year), summary)
}

// Purge drops every cached summary.
func (c *SummaryCache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

// Len reports the number of cached periods.
func (c *SummaryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func summaryKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
