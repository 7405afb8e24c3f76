// Package classifier decides whether a visited page is relevant to the
// active focus session's project. Classification results are memoized
// per (project description, URL) for the process lifetime, and every
// failure path resolves to a permissive default: the classifier must
// never block user work because the reasoning service is unavailable.
package classifier

import (
	"context"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/autofocus/pkg/models"
)

// Completer is the outbound reasoning-service call.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) ([]byte, error)
}

// Auditor records successful assessments for historical logging.
type Auditor interface {
	Record(ctx context.Context, url, projectDescription string, score float64, reasoning string) error
}

// emptyPageAssessment is returned for pages with no title and no
// content, typically browser-internal pages. It is never cached so such
// pages stay cheap to re-evaluate without polluting the cache.
var emptyPageAssessment = models.Assessment{
	RelevanceScore: 1.0,
	Reasoning:      "System page or empty content, allowing by default.",
}

// failOpenAssessment is returned whenever the reasoning service cannot
// produce a usable answer. It is never cached, so a later retry for the
// same key can still succeed.
var failOpenAssessment = models.Assessment{
	RelevanceScore: 1.0,
	Reasoning:      "Error analyzing page, defaulting to allowed to prevent blocking work.",
}

// cacheKey identifies a memoized assessment. Title and content preview
// are deliberately excluded: a page's classification freezes on first
// visit for a given project description.
type cacheKey struct {
	description string
	url         string
}

// Classifier memoizes page-relevance assessments from the reasoning
// service. Safe for concurrent use. Concurrent misses for the same key
// may both call the service; the last writer wins and both callers
// receive a valid result.
type Classifier struct {
	audit Auditor // may be nil

	mu    sync.RWMutex
	llm   Completer
	cache map[cacheKey]models.Assessment

	stats Stats
}

// Stats tracks classifier activity with atomic counters.
type Stats struct {
	CacheHits     atomic.Int64
	CacheMisses   atomic.Int64
	ShortCircuits atomic.Int64
	Fallbacks     atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	ShortCircuits int64 `json:"short_circuits"`
	Fallbacks     int64 `json:"fallbacks"`
	CacheSize     int   `json:"cache_size"`
}

// New creates a Classifier. audit may be nil to disable historical
// logging.
func New(llm Completer, audit Auditor) *Classifier {
	return &Classifier{
		llm:   llm,
		audit: audit,
		cache: make(map[cacheKey]models.Assessment),
	}
}

// assessmentWire is the response contract with the reasoning service:
// exactly two required fields. Pointers distinguish missing fields from
// zero values.
type assessmentWire struct {
	RelevanceScore *float64 `json:"relevance_score"`
	Reasoning      *string  `json:"reasoning"`
}

// Classify returns a relevance assessment for the page. It never
// returns an error: network failures, timeouts, and malformed responses
// all resolve to a permissive default.
func (c *Classifier) Classify(ctx context.Context, projectDescription, url, title, contentPreview string) models.Assessment {
	key := cacheKey{description: projectDescription, url: url}

	c.mu.RLock()
	cached, ok := c.cache[key]
	llm := c.llm
	c.mu.RUnlock()
	if ok {
		c.stats.CacheHits.Add(1)
		return cached
	}

	// System pages and empty tabs skip the external call entirely.
	// This path bypasses the cache on purpose.
	if title == "" && contentPreview == "" {
		c.stats.ShortCircuits.Add(1)
		return emptyPageAssessment
	}

	c.stats.CacheMisses.Add(1)

	raw, err := llm.CompleteJSON(ctx, systemPrompt, buildUserPrompt(projectDescription, url, title, contentPreview))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Classification call failed, failing open")
		c.stats.Fallbacks.Add(1)
		return failOpenAssessment
	}

	var wire assessmentWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Malformed classification response, failing open")
		c.stats.Fallbacks.Add(1)
		return failOpenAssessment
	}
	if wire.RelevanceScore == nil || wire.Reasoning == nil {
		log.Warn().Str("url", url).Msg("Classification response missing required fields, failing open")
		c.stats.Fallbacks.Add(1)
		return failOpenAssessment
	}

	// Out-of-range scores pass through unclamped; the score range is
	// the reasoning service's contract, not enforced here.
	assessment := models.Assessment{
		RelevanceScore: *wire.RelevanceScore,
		Reasoning:      *wire.Reasoning,
	}

	c.mu.Lock()
	c.cache[key] = assessment
	c.mu.Unlock()

	if c.audit != nil {
		if err := c.audit.Record(ctx, url, projectDescription, assessment.RelevanceScore, assessment.Reasoning); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to record page analysis")
		}
	}

	return assessment
}

// SetCompleter swaps the reasoning-service client. Called from the
// settings reload path when the model, endpoint, or timeout changes.
func (c *Classifier) SetCompleter(llm Completer) {
	c.mu.Lock()
	c.llm = llm
	c.mu.Unlock()
}

// ClearCache empties the cache unconditionally. Used by tests and when
// the classification policy changes.
func (c *Classifier) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[cacheKey]models.Assessment)
	c.mu.Unlock()
	log.Info().Msg("Classification cache cleared")
}

// CacheSize returns the number of memoized assessments.
func (c *Classifier) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Snapshot returns current classifier statistics.
func (c *Classifier) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		CacheHits:     c.stats.CacheHits.Load(),
		CacheMisses:   c.stats.CacheMisses.Load(),
		ShortCircuits: c.stats.ShortCircuits.Load(),
		Fallbacks:     c.stats.Fallbacks.Load(),
		CacheSize:     c.CacheSize(),
	}
}
