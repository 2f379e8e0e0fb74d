package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// ErrUnavailable marks failures where no usable response came back from the
// ERP backend (connection errors, open circuit, retries exhausted).
var ErrUnavailable = errors.New("erp backend unavailable")

const fallbackLimit = 500

// APIError is a non-2xx answer from the ERP backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Message is the first human-readable message found in Body.
	Message string
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
		Message:    ExtractMessage(body),
	}
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Detail returns the top-level "detail" string of the body, if any.
func (e *APIError) Detail() string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	s, _ := body.Detail.(string)
	return s
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// ExtractMessage walks an error body and returns the first message a user can
// act on. Lookup order: detail, message, error, non_field_errors, items
// (prefixed "Item"), nested fields as "a.b: msg", then "field: msg". Anything
// else is rendered as "Validation error: <json>" capped at 500 characters.
func ExtractMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	root, err := parseOrdered(body)
	if err != nil {
		return ""
	}

	switch root.kind {
	case kindString:
		return root.str
	case kindObject:
	default:
		return fallbackMessage(body)
	}

	for _, key := range []string{"detail", "message", "error"} {
		if v, ok := root.get(key); ok && v.kind == kindString && v.str != "" {
			return v.str
		}
	}

	if v, ok := root.get("non_field_errors"); ok && v.kind == kindArray && len(v.arr) > 0 {
		first := v.arr[0]
		if first.kind == kindString {
			return first.str
		}
		if msg, ok := nestedMessage(first, ""); ok {
			return msg
		}
		return "Validation error"
	}

	if v, ok := root.get("items"); ok {
		switch {
		case v.kind == kindArray && len(v.arr) > 0:
			if msg, ok := nestedMessage(v.arr[0], "Item"); ok {
				return msg
			}
		case v.kind == kindObject:
			if msg, ok := nestedMessage(v, "Item"); ok {
				return msg
			}
		}
	}

	if msg, ok := nestedMessage(root, ""); ok {
		return msg
	}

	for _, f := range root.obj {
		if f.val.kind == kindArray && len(f.val.arr) > 0 {
			first := f.val.arr[0]
			if first.kind == kindString {
				return f.key + ": " + first.str
			}
			if msg, ok := nestedMessage(first, f.key); ok {
				return msg
			}
		}
		if f.val.kind == kindString {
			return f.key + ": " + f.val.str
		}
	}

	return fallbackMessage(body)
}

func nestedMessage(n *node, prefix string) (string, bool) {
	switch n.kind {
	case kindString:
		return n.str, true
	case kindArray:
		if len(n.arr) == 0 {
			return "", false
		}
		if n.arr[0].kind == kindString {
			return n.arr[0].str, true
		}
		return nestedMessage(n.arr[0], prefix)
	case kindObject:
		for _, f := range n.obj {
			label := f.key
			if prefix != "" {
				label = prefix + "." + f.key
			}
			switch {
			case f.val.kind == kindString:
				return label + ": " + f.val.str, true
			case f.val.kind == kindArray && len(f.val.arr) > 0 && f.val.arr[0].kind == kindString:
				return label + ": " + f.val.arr[0].str, true
			case f.val.kind == kindObject || f.val.kind == kindArray:
				if msg, ok := nestedMessage(f.val, label); ok {
					return msg, true
				}
			}
		}
	}
	return "", false
}

func fallbackMessage(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return "An error occurred"
	}
	s := buf.String()
	if utf8.RuneCountInString(s) > fallbackLimit {
		return "Validation error: " + string([]rune(s)[:fallbackLimit]) + "..."
	}
	return "Validation error: " + s
}

type nodeKind int

const (
	kindNull nodeKind = iota
	kindString
	kindNumber
	kindBool
	kindArray
	kindObject
)

type field struct {
	key string
	val *node
}

// node is a JSON value that remembers object key order.
type node struct {
	kind nodeKind
	str  string
	arr  []*node
	obj  []field
}

func (n *node) get(key string) (*node, bool) {
	for _, f := range n.obj {
		if f.key == key {
			return f.val, true
		}
	}
	return nil, false
}

func parseOrdered(data []byte) (*node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return n, nil
}

func decodeNode(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &node{kind: kindObject}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				n.obj = append(n.obj, field{key: key, val: val})
			}
			_, err := dec.Token()
			return n, err
		case '[':
			n := &node{kind: kindArray}
			for dec.More() {
				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				n.arr = append(n.arr, val)
			}
			_, err := dec.Token()
			return n, err
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return &node{kind: kindString, str: t}, nil
	case json.Number:
		return &node{kind: kindNumber, str: t.String()}, nil
	case bool:
		return &node{kind: kindBool, str: fmt.Sprint(t)}, nil
	case nil:
		return &node{kind: kindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
