// Package locale maps the host platform's numeric locale identifiers to the
// locale tags the geocoder understands. The base table ships embedded;
// deployments can overlay additional ids from a yaml file.
package locale

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed locales.json
var localesJSON []byte

// DefaultTag is used whenever a locale id has no mapping.
const DefaultTag = "en-US"

// Table resolves numeric locale ids. Construct via NewTable; the zero value
// is not usable.
type Table struct {
	tags map[int]string
}

// NewTable loads the embedded id-to-tag table.
func NewTable() (*Table, error) {
	var raw map[string]string
	if err := json.Unmarshal(localesJSON, &raw); err != nil {
		return nil, fmt.Errorf("load embedded locale table: %w", err)
	}
	tags := make(map[int]string, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("bad locale id %q in embedded table", k)
		}
		tags[id] = v
	}
	return &Table{tags: tags}, nil
}

// ApplyOverridesFile overlays mappings from a yaml file of the form
// `1031: de-DE`. A missing file is not an error; deployments that don't
// override anything simply don't ship one.
func (t *Table) ApplyOverridesFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read locale overrides: %w", err)
	}
	var overrides map[int]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse locale overrides: %w", err)
	}
	for id, tag := range overrides {
		t.tags[id] = tag
	}
	return nil
}

// Tag returns the locale tag for id.
func (t *Table) Tag(id int) (string, bool) {
	tag, ok := t.tags[id]
	return tag, ok
}

// Resolve maps id to a tag, falling back to DefaultTag with a human-readable
// warning (not an error) when the id is unknown.
func (t *Table) Resolve(id int) (tag string, warning string) {
	if tag, ok := t.tags[id]; ok {
		return tag, ""
	}
	return DefaultTag, fmt.Sprintf("unknown locale id %d, falling back to %s", id, DefaultTag)
}
