package graph

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder references wire one node's output into another node's params
// using the reserved syntax {{nodeId.field}} or {{nodeId.items[0].name}}.
// Plan and Fix must preserve placeholders verbatim; only the compiler
// resolves them.

// Reference is a parsed placeholder occurrence.
type Reference struct {
	NodeID string // the producing node
	Field  string // dotted/indexed path into that node's output, may be empty
	Raw    string // the full "{{...}}" text as it appeared
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_-]+)((?:\.[a-zA-Z0-9_]+(?:\[\d+\])?)*)\s*\}\}`)

// References extracts every placeholder occurrence from a string, in order.
func References(s string) []Reference {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{
			NodeID: m[1],
			Field:  strings.TrimPrefix(m[2], "."),
			Raw:    m[0],
		})
	}
	return refs
}

// ParamReferences walks a node's params and collects every placeholder
// reference found in string values, including strings nested in arrays
// and objects.
func ParamReferences(params map[string]any) []Reference {
	var refs []Reference
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			refs = append(refs, References(val)...)
		case []any:
			for _, e := range val {
				walk(e)
			}
		case map[string]any:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		}
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		walk(params[k])
	}
	return refs
}
