// Package settings implements the two settings-string forms from spec
// section 6 (a JSON object, or a flat `key=value&...` query string), the
// GET envelope shape, and the generic audio/video codec settings schemas
// every processor built on top of the genaudioenc/genaudiodec/genvideoenc
// packages shares.
package settings

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/mediaprocessors/core/status"
)

// Tree is the parsed, type-erased settings value: string, float64, bool,
// nil, or nested map[string]interface{}/[]interface{} for the JSON form.
type Tree map[string]interface{}

// Parse recognizes the two forms distinguished by spec section 6: a string
// starting with '{' and ending with '}' is parsed as JSON; anything else is
// parsed as a query string of key=value pairs, with values left as strings.
func Parse(text string) (Tree, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Tree{}, nil
	}
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
			return nil, status.New(status.InvalidArgument, "malformed settings object: %v", err)
		}
		return Tree(m), nil
	}
	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, status.New(status.InvalidArgument, "malformed settings query string: %v", err)
	}
	out := make(Tree, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

// Encode renders t back to the query-string form, for re-applying a tree
// with one key removed to a backend's PutSettings.
func Encode(t Tree) string {
	values := url.Values{}
	for k, v := range t {
		values.Set(k, toString(v))
	}
	return values.Encode()
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}

// Envelope wraps a descriptor's settings tree in the stable GET response
// shape spec section 6 requires: at least a "settings" key.
func Envelope(t interface{}) map[string]interface{} {
	return map[string]interface{}{"settings": t}
}

// ReservedKeyName is the one settings key the registry itself intercepts
// rather than forwarding to a backend (spec section 4.7's proc_name swap).
const ReservedKeyName = "proc_name"

// ExtractReserved parses text, pulls key out of the resulting tree if
// present, and re-encodes the remainder as a query string suitable for
// handing to a backend's PutSettings. If key is absent it reports
// found=false and returns the original text unchanged as the remainder.
func ExtractReserved(text, key string) (value string, remainder string, found bool, err error) {
	tree, err := Parse(text)
	if err != nil {
		return "", "", false, err
	}
	raw, ok := tree[key]
	if !ok {
		return "", text, false, nil
	}
	str, ok := raw.(string)
	if !ok {
		return "", "", false, status.New(status.InvalidArgument, "%s must be a string", key)
	}
	delete(tree, key)
	return str, Encode(tree), true, nil
}

// IntField reads an integer-valued field from t, accepting both the JSON
// form's float64 and the query-string form's string, and falling back to
// def when the key is absent.
func IntField(t Tree, key string, def int) (int, error) {
	raw, ok := t[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, status.New(status.InvalidArgument, "%s: %v", key, err)
		}
		return n, nil
	default:
		return 0, status.New(status.InvalidArgument, "%s must be a number", key)
	}
}

// BoolField reads a boolean-valued field from t, accepting the JSON form's
// bool and the query-string form's "true"/"false", falling back to def.
func BoolField(t Tree, key string, def bool) (bool, error) {
	raw, ok := t[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, status.New(status.InvalidArgument, "%s: %v", key, err)
		}
		return b, nil
	default:
		return false, status.New(status.InvalidArgument, "%s must be a boolean", key)
	}
}

// StringField reads a string-valued field from t, falling back to def.
func StringField(t Tree, key string, def string) (string, error) {
	raw, ok := t[key]
	if !ok {
		return def, nil
	}
	str, ok := raw.(string)
	if !ok {
		return "", status.New(status.InvalidArgument, "%s must be a string", key)
	}
	return str, nil
}
