// Package page holds the host HTML page the statistics card is mounted into.
//
// The page is parsed once into a DOM tree and then mutated in place. All
// access goes through [Page] so that concurrent refresh cycles and HTTP
// handlers never observe a half-written card.
package page

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed HTML document guarded by a read/write lock.
type Page struct {
	mu  sync.RWMutex
	doc *goquery.Document
}

// Parse reads an HTML document into a new [Page].
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// ParseString is a convenience wrapper around [Parse].
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// Mutate runs fn with exclusive access to the document.
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// View runs fn with shared access to the document. fn must not modify it.
func (p *Page) View(fn func(doc *goquery.Document)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.doc)
}

// HTML serializes the whole document.
func (p *Page) HTML() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Html()
}

// Count returns the number of elements matching selector.
func (p *Page) Count(selector string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Find(selector).Length()
}
