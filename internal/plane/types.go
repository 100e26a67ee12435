package plane

import "encoding/json"

// Module is a named grouping of issues within a project.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Issue is a unit of work tracked by the service.
type Issue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewIssue describes an issue to create. The description is not stored
// natively by the service; it becomes the text of the issue's first comment.
type NewIssue struct {
	Name        string
	Description string
	ModuleID    string
	Properties  []IssueProperty
}

// Comment is a comment on an issue.
type Comment struct {
	ID          string `json:"id"`
	Comment     string `json:"comment"`
	CommentHTML string `json:"comment_html,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// IssueType is an issue classification available to the project.
// Only available on paid plans.
type IssueType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueProperty is a typed custom property attached to an issue type.
type IssueProperty struct {
	DisplayName     string         `json:"display_name"`
	Description     string         `json:"description"`
	PropertyType    string         `json:"property_type"`
	RelationType    string         `json:"relation_type,omitempty"`
	DefaultValue    []string       `json:"default_value,omitempty"`
	ValidationRules map[string]any `json:"validation_rules"`
	IsRequired      bool           `json:"is_required"`
	IsActive        bool           `json:"is_active"`
	IsMulti         bool           `json:"is_multi"`
}

// TextProperty returns an IssueProperty with the service's defaults for a
// plain text property.
func TextProperty(displayName, description string) IssueProperty {
	return IssueProperty{
		DisplayName:     displayName,
		Description:     description,
		PropertyType:    "text",
		ValidationRules: map[string]any{},
		IsRequired:      true,
		IsActive:        true,
	}
}

// ModuleIssue is one record from the module-issues association endpoint.
// The issue fields may appear inline or nested under "issue" or
// "issue_detail" depending on the server version; Resolve normalizes the
// variants.
type ModuleIssue struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Issue       json.RawMessage `json:"issue,omitempty"`
	IssueDetail json.RawMessage `json:"issue_detail,omitempty"`
}

// Resolve returns the issue referenced by this record. The nested variants
// take precedence over the inline fields. ok is false when no variant
// carries a usable identifier; such records should be skipped, not treated
// as fatal.
func (r ModuleIssue) Resolve() (Issue, bool) {
	// A record carrying an "issue" or "issue_detail" key, even a null one,
	// is a link record: its own ID identifies the link, not the issue.
	linkRecord := false
	for _, raw := range []json.RawMessage{r.Issue, r.IssueDetail} {
		if len(raw) == 0 {
			continue
		}
		linkRecord = true
		if string(raw) == "null" {
			continue
		}
		var nested Issue
		if err := json.Unmarshal(raw, &nested); err == nil && nested.ID != "" {
			return nested, true
		}
		// Some server versions return the bare issue ID instead of an object.
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			return Issue{ID: id}, true
		}
	}
	if !linkRecord && r.ID != "" {
		return Issue{ID: r.ID, Name: r.Name}, true
	}
	return Issue{}, false
}

// listEnvelope is the paginated envelope returned by all list endpoints.
// Only the first page is read; pagination traversal is a known limitation.
type listEnvelope struct {
	Results json.RawMessage `json:"results"`
}
