package humastar

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// EntryPath is the API entry point every resource links back to.
const EntryPath = "/health"

// LinkSet holds RFC 8288 Link header values derived from the OpenAPI
// document, keyed by operation path.
type LinkSet struct {
	mu     sync.RWMutex
	byPath map[string][]string
}

// NewLinkSet returns an empty set. Install its Transformer before routes are
// registered and call Build once they are.
func NewLinkSet() *LinkSet {
	return &LinkSet{byPath: map[string][]string{}}
}

// Build walks the OpenAPI paths and derives the links. Paths tagged "viewer"
// serve Datastar SSE and are left out.
func (ls *LinkSet) Build(api huma.API) {
	oapi := api.OpenAPI()
	links := map[string][]string{}
	add := func(from, to, rel string) {
		val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
		if !slices.Contains(links[from], val) {
			links[from] = append(links[from], val)
		}
	}

	var paths []string
	for p, pi := range oapi.Paths {
		if slices.Contains(primaryTags(pi), "viewer") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if p == EntryPath {
			continue
		}
		parent := path.Dir(p)
		if _, ok := oapi.Paths[parent]; ok && parent != p {
			add(p, parent, "up")
			add(parent, p, lastSegment(p))
			continue
		}
		add(p, EntryPath, "up")
		add(EntryPath, p, lastSegment(p))
	}

	if _, ok := oapi.Paths["/api/v1/query"]; ok {
		add(EntryPath, "/api/v1/query", "search")
		if _, ok := oapi.Paths["/api/v1/tables"]; ok {
			add("/api/v1/tables", "/api/v1/query", "search")
		}
	}
	add(EntryPath, "/openapi.json", "service-desc")
	add(EntryPath, "/docs", "service-doc")

	for _, p := range paths {
		if ref := responseSchemaRef(oapi.Paths[p]); ref != "" {
			add(p, "/openapi.json#/components/schemas/"+ref, "describedby")
		}
	}

	for p, headers := range links {
		pi, ok := oapi.Paths[p]
		if !ok {
			continue
		}
		for _, op := range operationsOf(pi) {
			if op != nil {
				injectResponseLinks(op, headers)
			}
		}
	}

	ls.mu.Lock()
	ls.byPath = links
	ls.mu.Unlock()
}

// For returns the links generated for an operation path.
func (ls *LinkSet) For(p string) []string {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.byPath[p]
}

// Root returns the entry point links, for use by non-Huma handlers.
func (ls *LinkSet) Root() []string {
	return ls.For(EntryPath)
}

// Transformer returns a Huma Transformer that writes the generated links,
// pagination links from [Pager] bodies and action links from [Actor] bodies.
func (ls *LinkSet) Transformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}
		for _, link := range ls.For(op.Path) {
			ctx.AppendHeader("Link", link)
		}
		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL()) {
				ctx.AppendHeader("Link", link)
			}
		}
		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}
		return v, nil
	}
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range operationsOf(pi) {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func operationsOf(pi *huma.PathItem) []*huma.Operation {
	return []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete}
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}

// injectResponseLinks documents the relationships on the success response.
func injectResponseLinks(op *huma.Operation, headers []string) {
	var resp *huma.Response
	for code, r := range op.Responses {
		if strings.HasPrefix(code, "2") {
			resp = r
			break
		}
	}
	if resp == nil {
		return
	}
	if resp.Links == nil {
		resp.Links = map[string]*huma.Link{}
	}
	for _, h := range headers {
		rel, href := parseLinkHeader(h)
		if rel == "" {
			continue
		}
		resp.Links[rel] = &huma.Link{
			OperationRef: href,
			Description:  "Related: " + rel,
		}
	}
}

func responseSchemaRef(pi *huma.PathItem) string {
	if pi.Get == nil {
		return ""
	}
	for code, resp := range pi.Get.Responses {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		for _, mt := range resp.Content {
			if mt.Schema != nil && mt.Schema.Ref != "" {
				return path.Base(mt.Schema.Ref)
			}
		}
	}
	return ""
}

// parseLinkHeader splits `<url>; rel="name"`.
func parseLinkHeader(h string) (rel, href string) {
	target, params, ok := strings.Cut(h, ";")
	if !ok {
		return "", ""
	}
	href = strings.Trim(strings.TrimSpace(target), "<>")
	params = strings.TrimSpace(params)
	if v, ok := strings.CutPrefix(params, "rel="); ok {
		rel = strings.Trim(v, `"`)
	}
	return rel, href
}
