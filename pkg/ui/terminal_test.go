package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"redditactions/pkg/models"
	"redditactions/pkg/processor"
)

func TestPrinterBasics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Error("Failed to load config", errors.New("bad yaml"))
	p.Info("Account", "spez")
	p.Success("done")

	out := buf.String()
	assert.Contains(t, out, "Failed to load config: bad yaml")
	assert.Contains(t, out, "Account")
	assert.Contains(t, out, "spez")
	assert.Contains(t, out, "done")
}

func TestItemLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	item := models.SavedItem{ID: "a", Title: "Go blog", Subreddit: "golang", URL: "https://go.dev/blog"}
	p.Item(processor.ItemResult{Item: item, Outcome: processor.OutcomeForwarded})
	p.Item(processor.ItemResult{Item: item, Outcome: processor.OutcomeSkipped, Reason: "self post"})

	out := buf.String()
	assert.Contains(t, out, "sent")
	assert.Contains(t, out, "r/golang")
	assert.Contains(t, out, "(self post)")

	buf.Reset()
	p.SetQuiet(true)
	p.Item(processor.ItemResult{Item: item, Outcome: processor.OutcomeForwarded})
	assert.Empty(t, buf.String())
}

func TestSummaryListsFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &processor.Report{
		Examined:  3,
		Forwarded: 2,
		Failed:    2,
		Results: []processor.ItemResult{
			{Item: models.SavedItem{ID: "one", URL: "https://a.example"}, Outcome: processor.OutcomeForwarded},
			{Item: models.SavedItem{ID: "two", URL: "https://b.example"}, Outcome: processor.OutcomeForwardFailed, Err: errors.New("400 bad request")},
			{Item: models.SavedItem{ID: "three", URL: "https://c.example"}, Outcome: processor.OutcomeUnsaveFailed, Err: errors.New("503")},
		},
	}
	p.Summary(report)

	out := buf.String()
	assert.Contains(t, out, "Examined")
	assert.Contains(t, out, "2 item(s) need attention")
	assert.Contains(t, out, "two https://b.example (not forwarded, still saved)")
	assert.Contains(t, out, "three https://c.example (forwarded but still saved)")
	assert.Contains(t, out, "400 bad request")
	assert.NotContains(t, out, "one https://a.example")
}

func TestSummaryNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summary(nil)
	assert.Empty(t, buf.String())
}
