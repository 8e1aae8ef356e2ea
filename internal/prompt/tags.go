// internal/prompt/tags.go
//
// Tag payload resolution at the storage boundary.
//
// Context
// -------
// Tag rows reach the Prompt struct as one JSON column built with
// JSON_ARRAYAGG in SQL.  Historical rows carried the payload in two shapes:
// an array of {name, color} objects, or a bare array of name strings.  Both
// are resolved here, once, into one normalized TagList so the related-prompt
// scorer never branches on payload shape.  Malformed payloads scan to an
// empty list; a broken tag column must never take down a page.
package prompt

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is one normalized tag reference.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TagList implements sql.Scanner so repositories can select the aggregated
// JSON column straight into a Prompt.
type TagList []Tag

// Scan resolves the column payload.  NULL (no tags) and every malformed
// variant yield an empty list; Scan never returns an error for bad data.
func (tl *TagList) Scan(src any) error {
	*tl = nil

	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	// Preferred shape: array of {name, color} objects.
	var objs []Tag
	if err := json.Unmarshal(raw, &objs); err == nil {
		*tl = compact(objs)
		return nil
	}

	// Legacy shape: array of bare name strings.
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		tags := make([]Tag, 0, len(names))
		for _, n := range names {
			tags = append(tags, Tag{Name: n})
		}
		*tl = compact(tags)
		return nil
	}

	// Unparseable payload is treated as "no tags".
	return nil
}

// Value serialises the list back to JSON for inserts; nil lists store NULL.
func (tl TagList) Value() (driver.Value, error) {
	if len(tl) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]Tag(tl))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return b, nil
}

// Names returns the tag names in order.
func (tl TagList) Names() []string {
	names := make([]string, 0, len(tl))
	for _, t := range tl {
		names = append(names, t.Name)
	}
	return names
}

// Has reports whether the list carries name, compared case-insensitively.
func (tl TagList) Has(name string) bool {
	for _, t := range tl {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// compact drops entries whose name is empty after trimming.
func compact(tags []Tag) TagList {
	out := tags[:0]
	for _, t := range tags {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return TagList(out)
}
