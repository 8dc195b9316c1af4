// Package catalog holds the registry of node types a workflow graph may use:
// each entry carries a parameter schema and the capability scopes the
// compiled artifact must request. A Catalog is immutable after construction
// and injected into the validator, orchestrator, and compiler; per-test
// catalogs are just another construction.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// ParamSchema constrains a single node parameter.
type ParamSchema struct {
	Type        string   `json:"type,omitempty"` // string|number|boolean|array|object
	Required    bool     `json:"required,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Entry describes one node type.
type Entry struct {
	ID             string                 `json:"id"` // "<kind>.<app>.<function>"
	Kind           graph.Kind             `json:"kind"`
	App            string                 `json:"app"`
	Function       string                 `json:"function"`
	Description    string                 `json:"description,omitempty"`
	Params         map[string]ParamSchema `json:"params,omitempty"`
	RequiredScopes []string               `json:"requiredScopes,omitempty"`
}

// AppSummary is returned by SearchApps.
type AppSummary struct {
	Name      string `json:"name"`
	Triggers  int    `json:"triggers"`
	Actions   int    `json:"actions"`
	Transform int    `json:"transforms"`
}

// AppFunctions groups an app's entries by kind.
type AppFunctions struct {
	App      string  `json:"app"`
	Triggers []Entry `json:"triggers"`
	Actions  []Entry `json:"actions"`
}

// Catalog is the immutable node-type registry.
type Catalog struct {
	entries map[string]Entry
	ordered []string
}

// New builds a Catalog from entries, enforcing construction-time rules:
// ids unique, id consistent with kind/app/function, and transform entries
// free of required scopes (side effects are confined to actions, so a
// transform demanding a capability grant is a definition bug).
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate node type %q", e.ID)
		}
		want := fmt.Sprintf("%s.%s.%s", e.Kind, e.App, e.Function)
		if e.ID != want {
			return nil, fmt.Errorf("catalog: node type id %q does not match kind/app/function %q", e.ID, want)
		}
		if e.Kind == graph.KindTransform && len(e.RequiredScopes) > 0 {
			return nil, fmt.Errorf("catalog: transform %q must not declare required scopes", e.ID)
		}
		c.entries[e.ID] = e
		c.ordered = append(c.ordered, e.ID)
	}
	sort.Strings(c.ordered)
	return c, nil
}

// Lookup returns the entry for a node type id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Entries returns all entries in id order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.entries[id])
	}
	return out
}

// ByKind returns all entries of one kind, in id order.
func (c *Catalog) ByKind(kind graph.Kind) []Entry {
	var out []Entry
	for _, id := range c.ordered {
		if e := c.entries[id]; e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SearchApps returns summaries of apps whose name or entry descriptions
// match the query, case-insensitively. An empty query lists every app.
func (c *Catalog) SearchApps(query string) []AppSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	byApp := make(map[string]*AppSummary)
	var names []string
	for _, id := range c.ordered {
		e := c.entries[id]
		if q != "" && !strings.Contains(strings.ToLower(e.App), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Function), q) {
			continue
		}
		s, ok := byApp[e.App]
		if !ok {
			s = &AppSummary{Name: e.App}
			byApp[e.App] = s
			names = append(names, e.App)
		}
		switch e.Kind {
		case graph.KindTrigger:
			s.Triggers++
		case graph.KindAction:
			s.Actions++
		case graph.KindTransform:
			s.Transform++
		}
	}
	sort.Strings(names)
	out := make([]AppSummary, 0, len(names))
	for _, n := range names {
		out = append(out, *byApp[n])
	}
	return out
}

// AppFunctions returns the triggers and actions an app offers.
func (c *Catalog) AppFunctions(app string) AppFunctions {
	out := AppFunctions{App: app}
	for _, id := range c.ordered {
		e := c.entries[id]
		if !strings.EqualFold(e.App, app) {
			continue
		}
		switch e.Kind {
		case graph.KindTrigger:
			out.Triggers = append(out.Triggers, e)
		case graph.KindAction:
			out.Actions = append(out.Actions, e)
		}
	}
	return out
}
