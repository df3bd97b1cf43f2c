package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// NormalizeImages converts any stored encoding of an image field into an
// ordered list of non-empty strings. Native lists are filtered, strings are
// decoded as JSON lists when possible and comma-split otherwise. Anything
// else yields an empty list. The result is never nil.
func NormalizeImages(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case ImageList:
		return normalizeStrings(v)
	case []string:
		return normalizeStrings(v)
	case []any:
		return normalizeAny(v)
	case []byte:
		return normalizeText(string(v))
	case string:
		return normalizeText(v)
	case *string:
		if v == nil {
			return []string{}
		}
		return normalizeText(*v)
	default:
		return []string{}
	}
}

func normalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeAny(in []any) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if s, ok := stringifyTruthy(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringifyTruthy drops nil, empty strings, false and zero the way a loose
// JSON producer would expect.
func stringifyTruthy(item any) (string, bool) {
	switch v := item.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		if !v {
			return "", false
		}
		return "true", true
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", false
		}
		return v.String(), true
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(raw), true
	}
}

func normalizeText(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			if list, ok := decoded.([]any); ok {
				return normalizeAny(list)
			}
		}
	}

	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// ImageList is the canonical in-memory form of an image field. It accepts
// JSON text, Postgres array literals, native JSON arrays and comma text.
type ImageList []string

// GormDataType keeps the column as plain text so both drivers agree.
func (ImageList) GormDataType() string {
	return "text"
}

// Value stores the list as a JSON array.
func (l ImageList) Value() (driver.Value, error) {
	raw, err := json.Marshal(normalizeStrings(l))
	if err != nil {
		return nil, fmt.Errorf("images: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes any of the supported storage encodings.
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("images: unsupported scan type %T", value)
	}

	if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "{") {
		var arr pq.StringArray
		if err := arr.Scan(trimmed); err == nil {
			*l = ImageList(normalizeStrings(arr))
			return nil
		}
	}

	*l = ImageList(normalizeText(raw))
	return nil
}

// UnmarshalJSON accepts a JSON array, a JSON string holding either encoding,
// or null. Malformed content degrades to an empty list.
func (l *ImageList) UnmarshalJSON(data []byte) error {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		*l = ImageList{}
		return nil
	}
	*l = ImageList(NormalizeImages(decoded))
	return nil
}

// MarshalJSON always emits an array.
func (l ImageList) MarshalJSON() ([]byte, error) {
	return json.Marshal(normalizeStrings(l))
}

// First returns the leading image or "".
func (l ImageList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}
