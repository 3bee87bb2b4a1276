package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContextTitleScreenshot is the title given to screenshot context entries.
const ContextTitleScreenshot = "screenshot"

// ContextEntry is one item attached to a test via addContext: either a bare
// string (URL, path or text) or a titled value.
type ContextEntry struct {
	Title string
	Value interface{}
}

// Context is the ordered list of entries attached to a test.
//
// mochawesome stores context as a JSON-encoded string holding a string, an
// object {title, value} or an array of those. Context accepts all of these
// shapes (and the same shapes unencoded) and always writes the string form.
type Context []ContextEntry

// StringValue returns the entry value if it is a string.
func (e ContextEntry) StringValue() (string, bool) {
	s, ok := e.Value.(string)
	return s, ok
}

// Has reports whether an entry with the same title and string value exists.
func (c Context) Has(title, value string) bool {
	for _, e := range c {
		if v, ok := e.StringValue(); ok && v == value && e.Title == title {
			return true
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (c Context) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}

	var inner []byte
	var err error
	if len(c) == 1 {
		inner, err = json.Marshal(c[0])
	} else {
		inner, err = json.Marshal([]ContextEntry(c))
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Context) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = nil
			return nil
		}
		parsed, err := parseContext([]byte(s))
		if err != nil {
			// Not JSON inside the string: a bare text entry.
			*c = Context{{Value: s}}
			return nil
		}
		*c = parsed
		return nil
	}

	parsed, err := parseContext(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func parseContext(data []byte) (Context, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty context")
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		out := make(Context, 0, len(raw))
		for _, r := range raw {
			var e ContextEntry
			if err := json.Unmarshal(r, &e); err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case '{', '"':
		var e ContextEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return Context{e}, nil
	default:
		return nil, fmt.Errorf("unsupported context shape %q", data[0])
	}
}

type titledEntry struct {
	Title string      `json:"title"`
	Value interface{} `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (e ContextEntry) MarshalJSON() ([]byte, error) {
	if s, ok := e.Value.(string); ok && e.Title == "" {
		return json.Marshal(s)
	}
	return json.Marshal(titledEntry{Title: e.Title, Value: e.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ContextEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ContextEntry{Value: s}
		return nil
	}

	var t titledEntry
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	*e = ContextEntry{Title: t.Title, Value: t.Value}
	return nil
}
