// Package journal holds the free-text trading diary and the monthly reviews
// that sit next to the ledger.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

var (
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrBadMonth      = errors.New("month must be YYYY-MM")
	ErrBadSentiment  = errors.New("sentiment must be positive, neutral or negative")
)

// Entry is a dated diary note. Date is set once at creation.
type Entry struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Mood        string   `json:"mood"`
	Tags        []string `json:"tags"`
	Attachments []string `json:"attachments,omitempty"`
}

// Draft carries the editable fields of an Entry.
type Draft struct {
	Title       string
	Content     string
	Mood        string
	Tags        []string
	Attachments []string
}

// Sentiment is the overall feel of a month.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Review is the retrospective written for one calendar month.
type Review struct {
	Month      string    `json:"month"`
	Goals      string    `json:"goals"`
	Successes  string    `json:"successes"`
	Challenges string    `json:"challenges"`
	Lessons    string    `json:"lessons"`
	NextMonth  string    `json:"nextMonth"`
	Sentiment  Sentiment `json:"sentiment"`
}

// Validate checks the month key and sentiment.
func (r Review) Validate() error {
	if _, err := time.Parse("2006-01", r.Month); err != nil || len(r.Month) != 7 {
		return fmt.Errorf("%q: %w", r.Month, ErrBadMonth)
	}
	switch r.Sentiment {
	case Positive, Neutral, Negative:
		return nil
	}
	return fmt.Errorf("%q: %w", r.Sentiment, ErrBadSentiment)
}

// Book is the in-memory collection of entries and reviews. It is owned by a
// single writer and is not safe for concurrent use.
type Book struct {
	entries []Entry
	reviews []Review
	now     func() time.Time
}

// NewBook wraps existing entries and reviews.
func NewBook(entries []Entry, reviews []Review) *Book {
	b := &Book{now: time.Now}
	b.Replace(entries, reviews)
	return b
}

// Replace swaps out all entries and reviews.
func (b *Book) Replace(entries []Entry, reviews []Review) {
	b.entries = make([]Entry, 0, len(entries))
	for _, e := range entries {
		id.Observe(e.ID)
		b.entries = append(b.entries, e.clone())
	}
	b.reviews = append([]Review(nil), reviews...)
}

// SetClock overrides the time source used for new entries.
func (b *Book) SetClock(now func() time.Time) { b.now = now }

// Save creates a new entry when entryID is zero. Otherwise it rewrites the
// entry with that id in place, keeping its original date.
func (b *Book) Save(d Draft, entryID int64) (Entry, error) {
	if entryID == 0 {
		now := b.now()
		e := Entry{
			ID:          id.NextAt(now),
			Date:        now.UTC().Format(time.RFC3339),
			Title:       d.Title,
			Content:     d.Content,
			Mood:        d.Mood,
			Tags:        nonNil(d.Tags),
			Attachments: clone(d.Attachments),
		}
		b.entries = append(b.entries, e)
		return e.clone(), nil
	}

	i := b.index(entryID)
	if i < 0 {
		return Entry{}, fmt.Errorf("entry %d: %w", entryID, ErrEntryNotFound)
	}
	e := b.entries[i]
	e.Title = d.Title
	e.Content = d.Content
	e.Mood = d.Mood
	e.Tags = nonNil(d.Tags)
	e.Attachments = clone(d.Attachments)
	b.entries[i] = e
	return e.clone(), nil
}

// Delete removes the entry with the given id.
func (b *Book) Delete(entryID int64) error {
	i := b.index(entryID)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", entryID, ErrEntryNotFound)
	}
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	return nil
}

// Get returns the entry with the given id.
func (b *Book) Get(entryID int64) (Entry, bool) {
	i := b.index(entryID)
	if i < 0 {
		return Entry{}, false
	}
	return b.entries[i].clone(), true
}

// Entries returns a copy of all entries in creation order.
func (b *Book) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.clone()
	}
	return out
}

// Search returns entries whose title, content or tags contain term,
// ignoring case. An empty term matches everything.
func (b *Book) Search(term string) []Entry {
	term = strings.ToLower(term)
	var out []Entry
	for _, e := range b.entries {
		if e.matches(term) {
			out = append(out, e.clone())
		}
	}
	return out
}

// SaveReview stores r, replacing any review already written for r.Month.
func (b *Book) SaveReview(r Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for i := range b.reviews {
		if b.reviews[i].Month == r.Month {
			b.reviews[i] = r
			return nil
		}
	}
	b.reviews = append(b.reviews, r)
	return nil
}

// Review returns the review for month, if any.
func (b *Book) Review(month string) (Review, bool) {
	for _, r := range b.reviews {
		if r.Month == month {
			return r, true
		}
	}
	return Review{}, false
}

// Reviews returns a copy of all reviews in the order they were first written.
func (b *Book) Reviews() []Review {
	return append([]Review(nil), b.reviews...)
}

func (b *Book) index(entryID int64) int {
	for i := range b.entries {
		if b.entries[i].ID == entryID {
			return i
		}
	}
	return -1
}

func (e Entry) matches(term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Content), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (e Entry) clone() Entry {
	e.Tags = clone(e.Tags)
	e.Attachments = clone(e.Attachments)
	return e
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return clone(s)
}
