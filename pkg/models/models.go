package models

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"
)

// Listing kinds returned by the Reddit API
const (
	KindComment = "t1"
	KindLink    = "t3"
)

// ListingResponse is the envelope returned by Reddit listing endpoints
type ListingResponse struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds one page of children and the cursors around it. After is
// empty on the last page.
type ListingData struct {
	After    string  `json:"after"`
	Before   string  `json:"before"`
	Dist     int     `json:"dist"`
	Children []Thing `json:"children"`
}

// Thing is one listing child. Only t3 (link) data is decoded fully;
// saved comments are skipped by the client.
type Thing struct {
	Kind string    `json:"kind"`
	Data ThingData `json:"data"`
}

// ThingData is the subset of a link's fields the forwarder needs.
// CreatedUTC is fractional Unix seconds.
type ThingData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	Domain     string  `json:"domain"`
	IsSelf     bool    `json:"is_self"`
	CreatedUTC float64 `json:"created_utc"`
}

// Identity is the subset of /api/v1/me we use
type Identity struct {
	Name string `json:"name"`
}

// SavedItem is one saved submission read from Reddit
type SavedItem struct {
	ID        string    `json:"id"`
	Fullname  string    `json:"fullname"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Subreddit string    `json:"subreddit"`
	Permalink string    `json:"permalink"`
	Domain    string    `json:"domain"`
	IsSelf    bool      `json:"is_self"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedItemFromThing converts a t3 listing child into a SavedItem
func SavedItemFromThing(t Thing) SavedItem {
	d := t.Data
	fullname := d.Name
	if fullname == "" && d.ID != "" {
		fullname = KindLink + "_" + d.ID
	}

	domain := strings.ToLower(d.Domain)
	if domain == "" {
		if u, err := url.Parse(d.URL); err == nil {
			domain = strings.ToLower(u.Hostname())
		}
	}

	var created time.Time
	if d.CreatedUTC > 0 {
		sec, frac := math.Modf(d.CreatedUTC)
		created = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}

	return SavedItem{
		ID:        d.ID,
		Fullname:  fullname,
		URL:       d.URL,
		Title:     d.Title,
		Subreddit: d.Subreddit,
		Permalink: d.Permalink,
		Domain:    domain,
		IsSelf:    d.IsSelf,
		CreatedAt: created,
	}
}

// ItemIterator yields saved items lazily. It is finite and cannot be
// restarted; once Next returns false, check Err.
type ItemIterator interface {
	Next(ctx context.Context) bool
	Item() SavedItem
	Err() error
}

// SliceIterator iterates over a fixed slice, used by fakes and tests
type SliceIterator struct {
	items []SavedItem
	pos   int
	err   error
}

// NewSliceIterator returns an iterator over items that reports err once exhausted
func NewSliceIterator(items []SavedItem, err error) *SliceIterator {
	return &SliceIterator{items: items, pos: -1, err: err}
}

// Next advances to the next item. It returns false once the slice is
// exhausted or ctx is done.
func (s *SliceIterator) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if s.pos+1 >= len(s.items) {
		s.pos = len(s.items)
		return false
	}
	s.pos++
	return true
}

// Item returns the current item, or the zero value outside the slice
func (s *SliceIterator) Item() SavedItem {
	if s.pos < 0 || s.pos >= len(s.items) {
		return SavedItem{}
	}
	return s.items[s.pos]
}

// Err returns the configured error once the slice is exhausted
func (s *SliceIterator) Err() error {
	if s.pos >= len(s.items) {
		return s.err
	}
	return nil
}
