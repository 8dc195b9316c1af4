package compiler

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

const generatedHeader = "// Generated by autoflow. Do not edit by hand.\n"

// emitEntry produces the entry file: a webhook handler for the event-style
// side, a scheduled runner plus trigger installation for the time-based
// side. Both share the compiled helpers in Workflow.gs.
func emitEntry(g *graph.NodeGraph, parts partitions, order []string) (string, error) {
	var sb strings.Builder
	sb.WriteString(generatedHeader)
	fmt.Fprintf(&sb, "// Workflow: %s (version %d)\n", g.Name, g.Version)

	if len(parts.webhook) > 0 {
		sb.WriteString(`
function doPost(e) {
  var ctx = {};
  ctx.__event = parseWebhookEvent_(e);
  runWebhookFlow_(ctx);
  return ContentService.createTextOutput(JSON.stringify({ ok: true }))
    .setMimeType(ContentService.MimeType.JSON);
}

function parseWebhookEvent_(e) {
  if (e && e.postData && e.postData.contents) {
    try {
      return JSON.parse(e.postData.contents);
    } catch (err) {
      return { raw: e.postData.contents };
    }
  }
  return e && e.parameter ? e.parameter : {};
}
`)
	}

	if len(parts.scheduled) > 0 {
		sb.WriteString(`
function runScheduled() {
  var ctx = {};
  runScheduledFlow_(ctx);
}

function installTriggers() {
`)
		for _, id := range order {
			n := g.Node(id)
			if n == nil || n.KindOf() != graph.KindTrigger || !isTimeTriggerNode(n) {
				continue
			}
			minutes := intervalMinutes(n)
			fmt.Fprintf(&sb, "  ScriptApp.newTrigger(%q).timeBased().everyMinutes(%d).create();\n",
				"runScheduled", minutes)
		}
		sb.WriteString("}\n")
	}

	return sb.String(), nil
}

// intervalMinutes reads a time trigger's everyMinutes param. Validation
// guarantees presence for the builtin type; other time triggers default to
// a conservative hourly poll.
func intervalMinutes(n *graph.Node) int {
	if v, ok := n.Params["everyMinutes"]; ok {
		switch num := v.(type) {
		case float64:
			return int(num)
		case int:
			return num
		}
	}
	return 60
}

// emitWorkflow produces the shared helper file: one function per node in
// execution order, flow runners per partition, and the runtime helpers that
// back placeholder references and secrets.
func emitWorkflow(g *graph.NodeGraph, cat *catalog.Catalog, parts partitions, order []string) (string, error) {
	var sb strings.Builder
	sb.WriteString(generatedHeader)

	for _, id := range order {
		n := g.Node(id)
		if n == nil {
			continue
		}
		code, err := emitNode(n, cat)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n")
		sb.WriteString(code)
	}

	if len(parts.webhook) > 0 {
		sb.WriteString("\n")
		sb.WriteString(emitFlowRunner("runWebhookFlow_", g, order, parts.webhook))
	}
	if len(parts.scheduled) > 0 {
		sb.WriteString("\n")
		sb.WriteString(emitFlowRunner("runScheduledFlow_", g, order, parts.scheduled))
	}

	sb.WriteString(runtimeHelpers)
	return sb.String(), nil
}

// emitFlowRunner emits the dependency-ordered call sequence for one
// partition, exposing each node's output to downstream nodes under its id.
func emitFlowRunner(name string, g *graph.NodeGraph, order []string, include map[string]bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s(ctx) {\n", name)
	for _, id := range order {
		if !include[id] {
			continue
		}
		fmt.Fprintf(&sb, "  ctx[%q] = %s(ctx);\n", id, nodeFuncName(id))
	}
	sb.WriteString("  return ctx;\n}\n")
	return sb.String()
}

var identSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func nodeFuncName(id string) string {
	return "node_" + identSanitizer.ReplaceAllString(id, "_") + "_"
}

// emitNode resolves a node's type into its emission template.
func emitNode(n *graph.Node, cat *catalog.Catalog) (string, error) {
	paramsExpr, err := paramsObjectExpr(n.Params)
	if err != nil {
		return "", fmt.Errorf("node %q: %w", n.ID, err)
	}

	var sb strings.Builder
	label := n.Label
	if label == "" {
		label = n.Type
	}
	fmt.Fprintf(&sb, "// %s: %s\n", n.ID, label)
	fmt.Fprintf(&sb, "function %s(ctx) {\n", nodeFuncName(n.ID))
	fmt.Fprintf(&sb, "  var params = %s;\n", paramsExpr)

	switch {
	case n.Type == "trigger.webhook.inbound":
		sb.WriteString("  return ctx.__event || {};\n")
	case isTimeTrigger(n.Type):
		sb.WriteString("  return { firedAt: new Date().toISOString(), params: params };\n")
	case n.Type == "action.http.request":
		sb.WriteString(`  var options = {
    method: (params.method || "GET").toLowerCase(),
    headers: params.headers || {},
    muteHttpExceptions: true,
  };
  if (params.body) {
    options.contentType = "application/json";
    options.payload = JSON.stringify(params.body);
  }
  var resp = UrlFetchApp.fetch(params.url, options);
  return { status: resp.getResponseCode(), body: resp.getContentText() };
`)
	case n.Type == "transform.data.pick":
		sb.WriteString("  return dig_(ctx, params.path);\n")
	case n.Type == "transform.text.template":
		sb.WriteString("  return params.template;\n")
	default:
		entry, ok := cat.Lookup(n.Type)
		if !ok {
			return "", fmt.Errorf("node %q: type %q not in catalog", n.ID, n.Type)
		}
		fmt.Fprintf(&sb, "  return callApp_(%q, %q, params);\n", entry.App, entry.Function)
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// paramsObjectExpr renders a param map as a JS object expression with every
// placeholder replaced by a runtime reference.
func paramsObjectExpr(params map[string]any) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{\n")
	for _, k := range keys {
		expr, err := valueExpr(params[k], "    ")
		if err != nil {
			return "", fmt.Errorf("param %q: %w", k, err)
		}
		fmt.Fprintf(&sb, "    %q: %s,\n", k, expr)
	}
	sb.WriteString("  }")
	return sb.String(), nil
}

// valueExpr renders one param value as a JS expression. Strings containing
// placeholders become reference expressions; a string that is exactly one
// placeholder preserves the referenced value's type instead of stringifying.
func valueExpr(v any, indent string) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool, float64, int, int64:
		return fmt.Sprintf("%v", val), nil
	case string:
		return stringExpr(val), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			expr, err := valueExpr(e, indent)
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			expr, err := valueExpr(val[k], indent)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%q: %s", k, expr))
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", fmt.Errorf("unsupported param value type %T", v)
	}
}

// stringExpr resolves placeholders inside a string param.
func stringExpr(s string) string {
	refs := graph.References(s)
	if len(refs) == 0 {
		return jsString(s)
	}
	if len(refs) == 1 && refs[0].Raw == s {
		return refExpr(refs[0])
	}
	var parts []string
	rest := s
	for _, ref := range refs {
		before, after, _ := strings.Cut(rest, ref.Raw)
		if before != "" {
			parts = append(parts, jsString(before))
		}
		parts = append(parts, "String("+refExpr(ref)+")")
		rest = after
	}
	if rest != "" {
		parts = append(parts, jsString(rest))
	}
	return strings.Join(parts, " + ")
}

// refExpr maps one placeholder to its runtime lookup. The reserved
// "secrets" id reads from the deploy-time property store instead of node
// output; secret values are never embedded in emitted source.
func refExpr(ref graph.Reference) string {
	if ref.NodeID == "secrets" {
		return fmt.Sprintf("getSecret_(%q)", ref.Field)
	}
	if ref.Field == "" {
		return fmt.Sprintf("ctx[%q]", ref.NodeID)
	}
	return fmt.Sprintf("ref_(ctx, %q, %q)", ref.NodeID, ref.Field)
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

const runtimeHelpers = `
function ref_(ctx, nodeId, path) {
  return dig_(ctx[nodeId], path);
}

function dig_(obj, path) {
  if (obj == null || !path) return obj;
  var parts = path.replace(/\[(\d+)\]/g, ".$1").split(".");
  var cur = obj;
  for (var i = 0; i < parts.length; i++) {
    if (cur == null) return null;
    cur = cur[parts[i]];
  }
  return cur;
}

function getSecret_(name) {
  var value = PropertiesService.getScriptProperties().getProperty(name);
  if (value == null) {
    throw new Error("secret not provisioned: " + name);
  }
  return value;
}

function callApp_(app, fn, params) {
  // Application API calls go through the per-app client layer, provisioned
  // separately from this bundle.
  var base = getSecret_("APP_GATEWAY_URL");
  var resp = UrlFetchApp.fetch(base + "/" + app + "/" + fn, {
    method: "post",
    contentType: "application/json",
    payload: JSON.stringify(params),
    muteHttpExceptions: true,
  });
  return JSON.parse(resp.getContentText() || "null");
}
`
