// Package filter decides which saved items are worth forwarding.
package filter

import (
	"fmt"
	"strings"
	"time"

	"redditactions/pkg/config"
	"redditactions/pkg/models"
)

// Filter applies the configured criteria to saved items. The zero value
// accepts everything.
type Filter struct {
	subreddits     map[string]struct{}
	excludeDomains map[string]struct{}
	maxAge         time.Duration
	minAge         time.Duration
	selfPost       *bool
	requireURL     bool
}

// New builds a Filter from configuration
func New(cfg config.FilterConfig) *Filter {
	f := &Filter{
		maxAge:     cfg.MaxAge,
		minAge:     cfg.MinAge,
		requireURL: cfg.RequireURL,
	}
	if cfg.SelfPost != nil {
		v := *cfg.SelfPost
		f.selfPost = &v
	}
	if len(cfg.Subreddits) > 0 {
		f.subreddits = toSet(cfg.Subreddits)
	}
	if len(cfg.ExcludeDomains) > 0 {
		f.excludeDomains = toSet(cfg.ExcludeDomains)
	}
	return f
}

// Match reports whether item should be forwarded. When it should not, reason
// says which criterion rejected it.
func (f *Filter) Match(item models.SavedItem, now time.Time) (bool, string) {
	if f.subreddits != nil {
		if _, ok := f.subreddits[strings.ToLower(item.Subreddit)]; !ok {
			return false, fmt.Sprintf("subreddit r/%s not selected", item.Subreddit)
		}
	}

	if f.selfPost != nil && item.IsSelf != *f.selfPost {
		if item.IsSelf {
			return false, "self post"
		}
		return false, "link post"
	}

	if f.requireURL && strings.TrimSpace(item.URL) == "" {
		return false, "no url"
	}

	if f.excludeDomains != nil && item.Domain != "" {
		if _, ok := f.excludeDomains[strings.ToLower(item.Domain)]; ok {
			return false, fmt.Sprintf("domain %s excluded", item.Domain)
		}
	}

	if !item.CreatedAt.IsZero() {
		age := now.Sub(item.CreatedAt)
		if f.maxAge > 0 && age > f.maxAge {
			return false, "older than max_age"
		}
		if f.minAge > 0 && age < f.minAge {
			return false, "newer than min_age"
		}
	}

	return true, ""
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(v, "r/")))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
