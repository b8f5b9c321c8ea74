package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"redbird/internal"
	"redbird/internal/logging"
)

const testPage = `<!DOCTYPE html><html><head><title>Trail</title></head><body>
<h2>Houses <span id="house-count">0</span></h2>
<div id="houses-unified-container"><p class="loading">Loading...</p></div>
</body></html>`

func testRenderer() (Renderer, *logging.Sink) {
	sink := logging.NewSink(zap.NewNop())
	icons := NewIconResolver("")
	return NewRenderer(DefaultMountID, DefaultCountID, icons.FallbackIcon(), sink), sink
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRenderEmptyState(t *testing.T) {
	r, _ := testRenderer()
	html, err := r.RenderFragment(Outcome{})
	if err != nil {
		t.Fatal(err)
	}
	doc := mustDoc(t, html)
	if got := doc.Find("p.no-houses").Text(); got != EmptyMessage {
		t.Fatalf("got %q", got)
	}
	if doc.Find("li.house-item").Length() != 0 {
		t.Fatal("empty state rendered cards")
	}
}

func TestRenderFailure(t *testing.T) {
	r, _ := testRenderer()
	html, err := r.RenderFragment(Outcome{Err: errors.New("fetch data/trail.csv: status 404"), TraceID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	doc := mustDoc(t, html)
	if got := doc.Find(".houses-error-message").Text(); got != FailureMessage {
		t.Fatalf("got %q", got)
	}
	if detail := doc.Find(".houses-error-detail code").Text(); !strings.Contains(detail, "status 404") || !strings.Contains(detail, "abc") {
		t.Fatalf("operator detail missing: %q", detail)
	}
	if doc.Find("p.no-houses").Length() != 0 {
		t.Fatal("failure rendered as empty state")
	}
}

func TestRenderListing(t *testing.T) {
	r, _ := testRenderer()
	houses := []internal.House{
		{Title: "Sweet & Spooky Stop", Subtitle: "Sweet treats with spooky twists", Address: "3710 SW 59th Ave", Icon: "assets/img/icons/sweet-spooky.png", Slug: "sweet-spooky-stop"},
		{Title: "<b>Cabin</b>", Subtitle: "Mysterious cabin lights the way", Address: "3801 SW 60th Ave", Icon: "assets/img/icons/cabin-woods.png", Slug: "b-cabin-b"},
	}
	html, err := r.RenderFragment(Outcome{Houses: houses})
	if err != nil {
		t.Fatal(err)
	}
	doc := mustDoc(t, html)
	if got := doc.Find(".houses-header h4").Text(); got != "🎃 2 Participating Houses 🎃" {
		t.Fatalf("header: %q", got)
	}
	items := doc.Find("ul.house-grid li.house-item")
	if items.Length() != 2 {
		t.Fatalf("expected 2 cards, got %d", items.Length())
	}
	first := items.First()
	if first.Find("h5.house-name").Text() != "Sweet & Spooky Stop" || first.Find("address.house-address").Text() != "3710 SW 59th Ave" {
		t.Fatalf("card content: %s", html)
	}
	if src, _ := first.Find("img.house-icon").Attr("src"); src != "assets/img/icons/sweet-spooky.png" {
		t.Fatalf("icon src: %q", src)
	}
	if onerr, _ := first.Find("img.house-icon").Attr("onerror"); !strings.Contains(onerr, "pumpkin.png") {
		t.Fatalf("onerror fallback missing: %q", onerr)
	}
	if slug, _ := first.Attr("data-slug"); slug != "sweet-spooky-stop" {
		t.Fatalf("slug: %q", slug)
	}
	if items.Eq(1).Find("h5.house-name b").Length() != 0 {
		t.Fatal("title was not escaped")
	}
}

func TestMountReplacesContentIdempotently(t *testing.T) {
	r, sink := testRenderer()
	outcome := Outcome{Houses: []internal.House{{Title: "Scary Cat", Subtitle: "Not too scary, perfect for kids", Address: "3715 sw 62 ct", Icon: "assets/img/icons/not-so-scary.png", Slug: "scary-cat"}}}

	once, mounted, err := r.Mount(strings.NewReader(testPage), outcome)
	if err != nil || !mounted {
		t.Fatalf("mount: mounted=%v err=%v", mounted, err)
	}
	twice, _, err := r.Mount(strings.NewReader(string(once)), outcome)
	if err != nil {
		t.Fatal(err)
	}
	if string(once) != string(twice) {
		t.Fatalf("mount is not idempotent:\n%s\n---\n%s", once, twice)
	}

	doc := mustDoc(t, string(once))
	if doc.Find("#houses-unified-container p.loading").Length() != 0 {
		t.Fatal("old mount content kept")
	}
	if doc.Find("#houses-unified-container li.house-item").Length() != 1 {
		t.Fatal("card not mounted")
	}
	if got := doc.Find("#house-count").Text(); got != "1" {
		t.Fatalf("count: %q", got)
	}
	if sink.Reported() != 0 {
		t.Fatalf("unexpected non-fatal reports: %d", sink.Reported())
	}
}

func TestMountWithoutMountPoint(t *testing.T) {
	r, sink := testRenderer()
	page := `<html><body><p>nothing here</p></body></html>`
	out, mounted, err := r.Mount(strings.NewReader(page), Outcome{})
	if err != nil {
		t.Fatal(err)
	}
	if mounted || string(out) != page {
		t.Fatalf("page changed without mount point: %s", out)
	}
	if sink.Reported() != 1 {
		t.Fatalf("missing mount not reported: %d", sink.Reported())
	}
}

func TestMountWithoutCountElement(t *testing.T) {
	r, sink := testRenderer()
	page := `<html><body><div id="houses-unified-container"></div></body></html>`
	out, mounted, err := r.Mount(strings.NewReader(page), Outcome{})
	if err != nil || !mounted {
		t.Fatalf("mounted=%v err=%v", mounted, err)
	}
	if mustDoc(t, string(out)).Find("p.no-houses").Length() != 1 {
		t.Fatal("empty state not mounted")
	}
	if sink.Reported() != 1 {
		t.Fatalf("missing count element not reported: %d", sink.Reported())
	}
}
