package workpackage

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExportedComment is one comment in the export document.
type ExportedComment struct {
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// ExportedIssue is one issue in the export document.
type ExportedIssue struct {
	Name     string            `json:"name"`
	ID       string            `json:"id"`
	Comments []ExportedComment `json:"comments"`
}

// Export maps a module name to its exported issues.
type Export map[string][]ExportedIssue

// WriteFile writes the export document as indented JSON.
func (e Export) WriteFile(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
