// Package card builds and rewrites the Collatz statistics card inside a
// host page DOM.
//
// The card is a single subtree, div.collatz-card, mounted under a container
// element. [Render] creates it on first use and overwrites its metrics list
// and sequence blocks on every call; it never creates a second card.
package card

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultContainer is the selector of the element the card mounts under.
	DefaultContainer = ".hero-right"

	// Selector matches the card element itself.
	Selector = ".collatz-card"

	metricsSelector   = ".collatz-metrics"
	efficientSelector = ".sequence-efficient"
	highSelector      = ".sequence-high-value"
)

// skeleton is the fixed internal structure of a freshly created card.
var skeleton = strings.Join([]string{
	`<div class="collatz-card">`,
	`<h3>Collatz Tracker</h3>`,
	`<dl class="collatz-metrics"></dl>`,
	`<div class="collatz-sequences">`,
	`<section class="most-efficient">`,
	`<h4>Most Efficient Prime</h4>`,
	`<pre class="sequence sequence-efficient"></pre>`,
	`</section>`,
	`<section class="highest-value">`,
	`<h4>Highest Collatz Value</h4>`,
	`<pre class="sequence sequence-high-value"></pre>`,
	`</section>`,
	`</div>`,
	`</div>`,
}, "")

// Entry is one term/description pair in the metrics list.
type Entry struct {
	Term   string `json:"term"`
	Detail string `json:"detail"`
}

// String renders the entry the way it reads on the page: "Term: Detail".
func (e Entry) String() string {
	return e.Term + ": " + e.Detail
}

// View is everything the card displays.
type View struct {
	Entries           []Entry `json:"entries"`
	EfficientSequence string  `json:"efficient_sequence"`
	HighValueSequence string  `json:"high_value_sequence"`
}

// Render projects v onto the card under the first element matching
// container. It returns false, leaving the document untouched, when no
// container exists.
func Render(doc *goquery.Document, container string, v View) bool {
	root := doc.Find(container).First()
	if root.Length() == 0 {
		return false
	}

	c := root.Find(Selector).First()
	if c.Length() == 0 {
		root.AppendHtml(skeleton)
		c = root.Find(Selector).First()
	}

	var b strings.Builder
	for _, e := range v.Entries {
		b.WriteString("<div><dt>")
		b.WriteString(html.EscapeString(e.Term))
		b.WriteString("</dt><dd>")
		b.WriteString(html.EscapeString(e.Detail))
		b.WriteString("</dd></div>")
	}
	c.Find(metricsSelector).SetHtml(b.String())

	c.Find(efficientSelector).SetText(v.EfficientSequence)
	c.Find(highSelector).SetText(v.HighValueSequence)
	return true
}

// Read returns what the card under container currently displays. ok is false
// when there is no container or no card yet.
func Read(doc *goquery.Document, container string) (v View, outer string, ok bool) {
	c := doc.Find(container).First().Find(Selector).First()
	if c.Length() == 0 {
		return View{}, "", false
	}

	c.Find(metricsSelector + " > div").Each(func(_ int, s *goquery.Selection) {
		v.Entries = append(v.Entries, Entry{
			Term:   s.Find("dt").Text(),
			Detail: s.Find("dd").Text(),
		})
	})
	v.EfficientSequence = c.Find(efficientSelector).Text()
	v.HighValueSequence = c.Find(highSelector).Text()

	outer, err := goquery.OuterHtml(c)
	if err != nil {
		return v, "", true
	}
	return v, outer, true
}
