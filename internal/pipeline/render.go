package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"redbird/internal"
	"redbird/internal/logging"
)

const (
	DefaultMountID = "houses-unified-container"
	DefaultCountID = "house-count"

	EmptyMessage   = "No houses available at this time."
	FailureMessage = "Unable to load houses data. Please refresh the page."
)

var fragmentTmpl = template.Must(template.New("listing").Parse(
	`{{- if .Failed -}}
<div class="houses-error">
<p class="houses-error-message">{{.FailureMessage}}</p>
<details class="houses-error-detail"><summary>Details for site operators</summary><code>trace {{.TraceID}}: {{.Detail}}</code></details>
</div>
{{- else if not .Houses -}}
<p class="no-houses">{{.EmptyMessage}}</p>
{{- else -}}
<div class="houses-header">
<h4>🎃 {{len .Houses}} Participating Houses 🎃</h4>
<p>Visit each house for unique Halloween treats!</p>
</div>
<ul class="house-grid">
{{- range .Houses}}
<li class="house-item" data-slug="{{.Slug}}">
<img class="house-icon" src="{{.Icon}}" alt="{{.Title}}" loading="lazy" onerror="this.onerror=null;this.src={{$.Fallback}}">
<h5 class="house-name">{{.Title}}</h5>
<p class="house-subtitle">{{.Subtitle}}</p>
<address class="house-address">{{.Address}}</address>
</li>
{{- end}}
</ul>
{{- end}}`))

type fragmentView struct {
	Failed         bool
	FailureMessage string
	EmptyMessage   string
	TraceID        string
	Detail         string
	Fallback       string
	Houses         []internal.House
}

// Renderer turns a pipeline outcome into the listing markup and places it
// in the page's mount element.
type Renderer struct {
	MountID      string
	CountID      string
	FallbackIcon string
	Sink         *logging.Sink
}

func NewRenderer(mountID, countID, fallbackIcon string, sink *logging.Sink) Renderer {
	if mountID == "" {
		mountID = DefaultMountID
	}
	return Renderer{MountID: mountID, CountID: countID, FallbackIcon: fallbackIcon, Sink: sink}
}

func (r Renderer) RenderFragment(outcome Outcome) (string, error) {
	view := fragmentView{
		FailureMessage: FailureMessage,
		EmptyMessage:   EmptyMessage,
		TraceID:        outcome.TraceID,
		Fallback:       r.FallbackIcon,
		Houses:         outcome.Houses,
	}
	if outcome.Err != nil {
		view.Failed = true
		view.Detail = outcome.Err.Error()
		view.Houses = nil
	}
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render listing: %w", err)
	}
	return buf.String(), nil
}

// Mount replaces the mount element's content with the rendered listing. The
// whole content is replaced, so mounting twice gives the same page. A page
// without the mount element comes back unchanged with mounted=false.
func (r Renderer) Mount(page io.Reader, outcome Outcome) ([]byte, bool, error) {
	raw, err := io.ReadAll(page)
	if err != nil {
		return nil, false, fmt.Errorf("read page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("parse page: %w", err)
	}

	mount := doc.Find("#" + r.mountID())
	if mount.Length() == 0 {
		r.Sink.NonFatal("render.mount", errors.New("mount element not found"), zap.String("mount_id", r.mountID()))
		return raw, false, nil
	}

	fragment, err := r.RenderFragment(outcome)
	if err != nil {
		return nil, false, err
	}
	mount.First().SetHtml(fragment)
	r.updateCount(doc, outcome)

	html, err := doc.Html()
	if err != nil {
		return nil, false, fmt.Errorf("serialize page: %w", err)
	}
	return []byte(html), true, nil
}

func (r Renderer) updateCount(doc *goquery.Document, outcome Outcome) {
	if r.CountID == "" || outcome.Err != nil {
		return
	}
	count := doc.Find("#" + r.CountID)
	if count.Length() == 0 {
		r.Sink.NonFatal("render.count", errors.New("count element not found"), zap.String("count_id", r.CountID))
		return
	}
	count.SetText(strconv.Itoa(len(outcome.Houses)))
}

func (r Renderer) mountID() string {
	if r.MountID == "" {
		return DefaultMountID
	}
	return r.MountID
}
