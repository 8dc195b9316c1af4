// Package compiler transforms a validated workflow graph into a deployable
// source bundle for the target scripting runtime. Compilation assumes a
// pre-validated graph: it does not re-run validation and does not guard
// against structural invariant violations. Validate first.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// File is one emitted source file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Stats are derived by scanning emitted content.
type Stats struct {
	FileCount    int  `json:"fileCount"`
	TotalLines   int  `json:"totalLines"`
	HasWebhook   bool `json:"hasWebhook"`
	HasScheduled bool `json:"hasScheduled"`
}

// Bundle is the compilation result: named source files plus the designated
// entry file.
type Bundle struct {
	Files []File `json:"files"`
	Entry string `json:"entry"`
	Stats Stats  `json:"stats"`
}

const (
	entryFile    = "Code.gs"
	workflowFile = "Workflow.gs"
	manifestFile = "appsscript.json"
	secretsFile  = "secrets.json"
)

// Compile emits the bundle for a pre-validated graph. The catalog supplies
// trigger discipline and app/function metadata for generic node types.
func Compile(g *graph.NodeGraph, cat *catalog.Catalog) (*Bundle, error) {
	order := executionOrder(g)
	if len(order) < len(g.Nodes) {
		// Not a validation re-run: an unsortable graph cannot be emitted at all.
		return nil, fmt.Errorf("graph is not a DAG; validate before compiling")
	}

	parts := partition(g)

	var files []File
	entry, err := emitEntry(g, parts, order)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: entryFile, Content: entry})

	workflow, err := emitWorkflow(g, cat, parts, order)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: workflowFile, Content: workflow})

	files = append(files,
		File{Name: manifestFile, Content: emitManifest(g)},
		File{Name: secretsFile, Content: emitSecrets(g)},
	)

	bundle := &Bundle{
		Files: files,
		Entry: entryFile,
		Stats: Stats{
			HasWebhook:   len(parts.webhook) > 0,
			HasScheduled: len(parts.scheduled) > 0,
		},
	}
	bundle.Stats.FileCount = len(files)
	for _, f := range files {
		bundle.Stats.TotalLines += strings.Count(f.Content, "\n")
	}
	return bundle, nil
}

// executionOrder is the validator's topological discipline with a stable
// tiebreak: nodes with no ordering among them are emitted in id order, for
// reproducible output.
func executionOrder(g *graph.NodeGraph) []string {
	exists := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		exists[n.ID] = true
	}
	indegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string)
	for _, e := range g.Edges {
		if !exists[e.From] || !exists[e.To] {
			continue
		}
		indegree[e.To]++
		successors[e.From] = append(successors[e.From], e.To)
	}

	var ready []string
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		next := append([]string(nil), successors[id]...)
		sort.Strings(next)
		for _, succ := range next {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = insertSorted(ready, succ)
			}
		}
	}
	return order
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

// partitions of the graph by trigger discipline. A graph may contain both
// kinds at once; each side becomes an independent entry point over the same
// compiled helpers.
type partitions struct {
	webhook   map[string]bool // nodes reachable from an event-style trigger
	scheduled map[string]bool // nodes reachable from a time-based trigger
}

func partition(g *graph.NodeGraph) partitions {
	parts := partitions{
		webhook:   make(map[string]bool),
		scheduled: make(map[string]bool),
	}
	successors := make(map[string][]string)
	for _, e := range g.Edges {
		successors[e.From] = append(successors[e.From], e.To)
	}
	for _, n := range g.Nodes {
		if n.KindOf() != graph.KindTrigger {
			continue
		}
		reach := parts.webhook
		if isTimeTriggerNode(&n) {
			reach = parts.scheduled
		}
		markReachable(n.ID, successors, reach)
	}
	return parts
}

func isTimeTrigger(nodeType string) bool {
	return strings.HasPrefix(nodeType, "trigger.time.")
}

// isTimeTriggerNode classifies trigger discipline: trigger.time.* is always
// scheduled, and any other trigger that declares a polling interval is
// scheduled too (polled app triggers run off the clock, not a webhook).
func isTimeTriggerNode(n *graph.Node) bool {
	if isTimeTrigger(n.Type) {
		return true
	}
	_, polled := n.Params["everyMinutes"]
	return polled
}

func markReachable(from string, successors map[string][]string, seen map[string]bool) {
	if seen[from] {
		return
	}
	seen[from] = true
	for _, next := range successors[from] {
		markReachable(next, successors, seen)
	}
}
