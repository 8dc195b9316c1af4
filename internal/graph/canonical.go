package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed graph identity. The version suffix
// enables future algorithm migration without colliding with old hashes.
const hashDomain = "workflow/graph/v1"

// Hash computes a content hash over the graph's canonical JSON form.
// Two graphs with identical content hash identically regardless of map
// iteration order or string normalization form. The session store keys
// plan/fix attempts by this hash, and tests use it to assert that Fix
// with no errors leaves a graph untouched.
func (g *NodeGraph) Hash() (string, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshaling graph: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("round-tripping graph: %w", err)
	}
	canon, err := MarshalCanonical(generic)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write(canon)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarshalCanonical produces canonical JSON for hashing:
// object keys sorted, strings NFC-normalized, no HTML escaping, numbers in
// shortest-round-trip form. Unlike strict RFC 8785 we accept floats and
// nulls, since graph params are arbitrary user-shaped JSON.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case string:
		return canonicalString(val)
	case float64:
		return []byte(strconv.FormatFloat(val, 'g', -1, 64)), nil
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := MarshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(enc)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			ek, err := canonicalString(k)
			if err != nil {
				return nil, err
			}
			buf.Write(ek)
			buf.WriteByte(':')
			ev, err := MarshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			buf.Write(ev)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// canonicalString encodes a string with NFC normalization and without
// HTML escaping (<, >, & stay literal).
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
