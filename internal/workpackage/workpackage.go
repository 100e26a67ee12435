// Package workpackage handles the local representations of project work:
// the input files mapping module names to issues, and the export document
// produced from a live project.
package workpackage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is one issue of a work package: a title plus the description that
// becomes the issue's first comment.
type Item struct {
	Name        string
	Description string
}

// Set maps a module name to the issues that belong to it.
type Set map[string][]Item

// ModuleNames returns the module names in sorted order, for deterministic
// iteration.
func (s Set) ModuleNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a work-package file. JSON and YAML are supported, selected by
// file extension. Issue entries may be plain strings (interpreted as a
// title with an auto-generated description) or objects with explicit
// name/description fields.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read work packages: %w", err)
	}

	var raw map[string][]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML work packages: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON work packages: %w", err)
		}
	}

	set := make(Set, len(raw))
	for moduleName, entries := range raw {
		items := make([]Item, 0, len(entries))
		for i, entry := range entries {
			item, err := normalizeEntry(entry)
			if err != nil {
				return nil, fmt.Errorf("module %q entry %d: %w", moduleName, i, err)
			}
			items = append(items, item)
		}
		set[moduleName] = items
	}
	return set, nil
}

// normalizeEntry converts one raw issue entry into an Item. Objects missing
// a description get the same auto-generated one as plain strings, so an
// export document can be re-imported as-is.
func normalizeEntry(entry any) (Item, error) {
	switch v := entry.(type) {
	case string:
		return Item{Name: v, Description: "Task: " + v}, nil
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return Item{}, fmt.Errorf("issue object has no name")
		}
		description, _ := v["description"].(string)
		if description == "" {
			description = "Task: " + name
		}
		return Item{Name: name, Description: description}, nil
	default:
		return Item{}, fmt.Errorf("unsupported issue entry type %T", entry)
	}
}
