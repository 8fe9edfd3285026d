package page

import (
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const hostPage = `<!doctype html><html><body><div class="hero"><div class="hero-right"></div></div></body></html>`

func mustParse(t *testing.T) *Page {
	t.Helper()
	p, err := ParseString(hostPage)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return p
}

func TestParse(t *testing.T) {
	p := mustParse(t)

	if n := p.Count(".hero-right"); n != 1 {
		t.Errorf("Count(.hero-right) = %d, want 1", n)
	}
	if n := p.Count(".collatz-card"); n != 0 {
		t.Errorf("Count(.collatz-card) = %d, want 0", n)
	}
}

func TestMutate(t *testing.T) {
	p := mustParse(t)

	p.Mutate(func(doc *goquery.Document) {
		doc.Find(".hero-right").AppendHtml(`<p class="note">hi</p>`)
	})

	if n := p.Count(".hero-right .note"); n != 1 {
		t.Errorf("Count(.note) = %d, want 1", n)
	}

	out, err := p.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(out, `<p class="note">hi</p>`) {
		t.Errorf("HTML() missing mutation: %s", out)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("doctype should survive serialization: %s", out)
	}
}

func TestView(t *testing.T) {
	p := mustParse(t)

	var n int
	p.View(func(doc *goquery.Document) {
		n = doc.Find("div").Length()
	})
	if n != 2 {
		t.Errorf("divs = %d, want 2", n)
	}
}

func TestConcurrentAccess(t *testing.T) {
	p := mustParse(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.Mutate(func(doc *goquery.Document) {
				doc.Find(".hero-right").SetHtml(`<span>x</span>`)
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = p.HTML()
		}()
	}
	wg.Wait()

	if n := p.Count(".hero-right span"); n != 1 {
		t.Errorf("spans = %d, want 1", n)
	}
}
