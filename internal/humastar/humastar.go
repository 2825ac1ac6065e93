// Package humastar bridges Huma (REST/OpenAPI) with Datastar (SSE/hypermedia).
//
// Viewer handlers embed [Handler], read the page's signals through
// [SignalsInput] and answer with a [SSE] stream that patches signals and
// HTML fragments:
//
//	func (h *FilterHandler) Apply(ctx context.Context, in *humastar.SignalsInput) (*huma.StreamResponse, error) {
//	    signals, err := in.MustParse()
//	    if err != nil {
//	        return nil, err
//	    }
//	    return h.Stream(func(sse humastar.SSE) {
//	        sse.Signals(map[string]any{"matchCount": n})
//	    }), nil
//	}
package humastar

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/geo-filter/internal/templates"
)

// Handler is an embeddable base for Huma handlers that produce Datastar SSE
// responses.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream returns a Huma StreamResponse that calls fn with a ready SSE helper.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			fn(NewSSE(humaCtx))
		},
	}
}

// Fragment renders a named template, falling back to an empty-state block
// when rendering fails so the page never receives a half-written patch.
func (h *Handler) Fragment(name string, data any) string {
	html, err := h.Renderer.Render(name, data)
	if err != nil {
		return h.empty("Render failed", err.Error())
	}
	return html
}

// RenderSelect renders <option> elements from a placeholder and option list.
func (h *Handler) RenderSelect(placeholder string, options []SelectOptionData) string {
	var buf bytes.Buffer
	h.Renderer.RenderToBuffer(&buf, "select-option", SelectOptionData{Label: placeholder})
	for _, opt := range options {
		h.Renderer.RenderToBuffer(&buf, "select-option", opt)
	}
	return buf.String()
}

func (h *Handler) empty(title, msg string) string {
	html, _ := h.Renderer.Render("empty-state", map[string]string{"Title": title, "Message": msg})
	return html
}

// SelectOptionData holds data for rendering a <select> option template.
type SelectOptionData struct {
	Value string
	Label string
}

// SSE wraps a Datastar SSE generator with the patch shapes the viewer uses.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE helper from a Huma streaming context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch sends HTML to replace inner content at a CSS selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeInner(),
	)
}

// Replace replaces outer HTML at a CSS selector.
func (s SSE) Replace(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeOuter(),
	)
}

// Error sets the error signal. An empty message clears it.
func (s SSE) Error(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"error": msg})
}

// Signals sends arbitrary signals to the UI.
func (s SSE) Signals(signals map[string]any) {
	s.MarshalAndPatchSignals(signals)
}

// Signals provides typed access to Datastar signal values.
// Datastar sends all signals as a flat JSON object in the request body.
type Signals map[string]any

// ParseSignals parses Datastar signals from a raw request body. An empty
// body yields no signals.
func ParseSignals(body []byte) (Signals, error) {
	signals := Signals{}
	if len(bytes.TrimSpace(body)) == 0 {
		return signals, nil
	}
	if err := json.Unmarshal(body, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// String returns a string signal value, or empty string if not found.
func (s Signals) String(key string) string {
	if str, ok := s[key].(string); ok {
		return str
	}
	return ""
}

// Strings returns a list signal. Arrays are the supported form and their
// entries are returned as sent, so values may contain commas. A plain string
// is read as a legacy comma-separated list. Blank entries are dropped.
func (s Signals) Strings(key string) []string {
	var out []string
	switch v := s[key].(type) {
	case string:
		for _, str := range strings.Split(v, ",") {
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
	case []any:
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, str)
			}
		}
	}
	return out
}

// Has returns true if the signal key exists (even if zero-valued).
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// EmptyInput is a shared input struct for handlers with no parameters.
type EmptyInput struct{}

// SignalsInput is an input struct for handlers that receive Datastar signals.
type SignalsInput struct {
	RawBody []byte
}

// MustParse parses signals or returns a Huma 400 error.
func (i *SignalsInput) MustParse() (Signals, error) {
	signals, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	return signals, nil
}
