package humastar

import (
	"fmt"
	"net/url"
	"strings"
)

// Action is a state-dependent hypermedia action link.
//
//	</api/v1/dataset>; rel="delete"; method="DELETE"; title="Unload dataset"
type Action struct {
	Rel    string
	Href   string
	Method string
	Title  string
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	return b.String()
}

// ActionDef is a reusable action template. Pattern carries at most one %s
// verb, filled with the query-escaped argument.
type ActionDef struct {
	Rel     string
	Pattern string
	Method  string
	Title   string
}

// ActionsFor expands defs for arg.
func ActionsFor(arg string, defs []ActionDef) []Action {
	escaped := url.QueryEscape(arg)
	actions := make([]Action, len(defs))
	for i, d := range defs {
		href := d.Pattern
		if strings.Contains(href, "%s") {
			href = fmt.Sprintf(href, escaped)
		}
		actions[i] = Action{Rel: d.Rel, Href: href, Method: d.Method, Title: d.Title}
	}
	return actions
}
