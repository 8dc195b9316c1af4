package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// entrySpec mirrors the CUE shape of a catalog entry. The map key under
// "nodes" is the entry id; kind/app/function are derived from it.
type entrySpec struct {
	Description    string                 `json:"description"`
	Params         map[string]ParamSchema `json:"params"`
	RequiredScopes []string               `json:"requiredScopes"`
}

// LoadDir reads every CUE file in dir and returns the node-type entries
// declared under the top-level "nodes" field, merged with the builtin
// generic types. Definition errors (bad id, transform with scopes,
// duplicates against builtins) fail the load; they are author mistakes,
// not graph diagnostics.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := loadEntries(dir)
	if err != nil {
		return nil, err
	}
	return New(append(Builtin(), entries...))
}

func loadEntries(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading catalog CUE files: %w", inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building catalog CUE value: %w", err)
	}

	nodes := value.LookupPath(cue.ParsePath("nodes"))
	if !nodes.Exists() {
		return nil, fmt.Errorf("catalog CUE files declare no top-level \"nodes\" field")
	}

	iter, err := nodes.Fields()
	if err != nil {
		return nil, fmt.Errorf("reading \"nodes\": %w", err)
	}

	var entries []Entry
	for iter.Next() {
		id := iter.Label()
		var spec entrySpec
		if err := iter.Value().Decode(&spec); err != nil {
			return nil, fmt.Errorf("%s: decoding entry %q: %w", iter.Value().Pos(), id, err)
		}
		entry, err := entryFromSpec(id, spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", iter.Value().Pos(), err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func entryFromSpec(id string, spec entrySpec) (Entry, error) {
	parts := strings.SplitN(id, ".", 3)
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("entry id %q: expected \"<kind>.<app>.<function>\"", id)
	}
	kind, err := graph.ParseKind(id)
	if err != nil {
		return Entry{}, fmt.Errorf("entry id %q: %w", id, err)
	}
	return Entry{
		ID:             id,
		Kind:           kind,
		App:            parts[1],
		Function:       parts[2],
		Description:    spec.Description,
		Params:         spec.Params,
		RequiredScopes: spec.RequiredScopes,
	}, nil
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
