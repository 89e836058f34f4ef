package reddit

import (
	"context"

	"redditactions/pkg/models"
)

// savedIterator pages through /user/{name}/saved.
//
// Reddit's after cursor is the fullname of the last item on a page. If that
// item is unsaved before the next page is requested the cursor no longer
// resolves, so the iterator always holds one item of lookahead: the last item
// of a page is only handed out once the following page is buffered.
//
// The listing can shift between requests and repeat an item on the next page,
// so items are de-duplicated by fullname and each is yielded once per run.
type savedIterator struct {
	client   *Client
	pageSize int

	buf       []models.SavedItem
	seen      map[string]struct{}
	current   models.SavedItem
	after     string
	started   bool
	exhausted bool
	pages     int
	err       error
}

func (it *savedIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		return false
	}

	if err := it.fill(ctx, 2); err != nil {
		it.err = err
		return false
	}
	if len(it.buf) == 0 {
		return false
	}

	it.current = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

func (it *savedIterator) Item() models.SavedItem {
	return it.current
}

func (it *savedIterator) Err() error {
	return it.err
}

// fill fetches pages until at least n items are buffered or the listing ends
func (it *savedIterator) fill(ctx context.Context, n int) error {
	for len(it.buf) < n && !it.exhausted {
		if it.started && it.after == "" {
			it.exhausted = true
			break
		}

		listing, err := it.client.fetchPage(ctx, it.after, it.pageSize)
		if err != nil {
			return err
		}
		it.started = true
		it.pages++

		added, repeated := 0, 0
		for _, child := range listing.Data.Children {
			if child.Kind != models.KindLink {
				continue
			}
			item := models.SavedItemFromThing(child)
			if _, ok := it.seen[item.Fullname]; ok {
				repeated++
				continue
			}
			if it.seen == nil {
				it.seen = make(map[string]struct{})
			}
			it.seen[item.Fullname] = struct{}{}
			it.buf = append(it.buf, item)
			added++
		}

		next := listing.Data.After
		if next == it.after {
			// a repeated cursor would loop forever
			next = ""
		}
		it.after = next
		if it.after == "" {
			it.exhausted = true
		}

		it.client.logger.DebugWithFields("Fetched saved page", map[string]interface{}{
			"page":     it.pages,
			"items":    added,
			"repeated": repeated,
			"children": len(listing.Data.Children),
			"after":    it.after,
		})
	}
	return nil
}
