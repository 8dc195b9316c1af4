package compiler

import (
	"encoding/json"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// secretPlaceholder marks a secret slot the operator fills at deploy time.
// Secret values are never embedded in emitted source.
const secretPlaceholder = "__SET_AT_DEPLOY__"

// manifest is the runtime manifest shape.
type manifest struct {
	TimeZone         string   `json:"timeZone"`
	ExceptionLogging string   `json:"exceptionLogging"`
	RuntimeVersion   string   `json:"runtimeVersion"`
	OauthScopes      []string `json:"oauthScopes"`
}

// emitManifest declares the union of capability scopes the bundle requests.
func emitManifest(g *graph.NodeGraph) string {
	m := manifest{
		TimeZone:         "Etc/UTC",
		ExceptionLogging: "STACKDRIVER",
		RuntimeVersion:   "V8",
		OauthScopes:      append([]string{}, g.Scopes...),
	}
	data, _ := json.MarshalIndent(m, "", "  ")
	return string(data) + "\n"
}

// emitSecrets declares a placeholder per secret id.
func emitSecrets(g *graph.NodeGraph) string {
	secrets := make(map[string]string, len(g.Secrets))
	for _, id := range g.Secrets {
		secrets[id] = secretPlaceholder
	}
	data, _ := json.MarshalIndent(secrets, "", "  ")
	return string(data) + "\n"
}
