package plane

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
)

// commentPayload is the write schema for comments. The service requires
// the same text in three parallel representations.
type commentPayload struct {
	Comment     string      `json:"comment"`
	CommentHTML string      `json:"comment_html"`
	CommentJSON richTextDoc `json:"comment_json"`
}

type richTextDoc struct {
	Type    string         `json:"type"`
	Content []richTextNode `json:"content"`
}

type richTextNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []richTextNode `json:"content,omitempty"`
}

// CreateComment creates a plain-text comment on an issue.
func (c *Client) CreateComment(ctx context.Context, issueID, text string) (*Comment, error) {
	payload := commentPayload{
		Comment:     text,
		CommentHTML: "<p>" + html.EscapeString(text) + "</p>",
		CommentJSON: richTextDoc{
			Type: "doc",
			Content: []richTextNode{
				{
					Type: "paragraph",
					Content: []richTextNode{
						{Type: "text", Text: text},
					},
				},
			},
		},
	}

	raw, err := c.do(ctx, http.MethodPost, c.projectPath("issues/"+issueID+"/comments/"), payload)
	if err != nil {
		return nil, err
	}

	var comment Comment
	if err := json.Unmarshal(raw, &comment); err != nil {
		return nil, fmt.Errorf("decode comment response: %w", err)
	}
	return &comment, nil
}

// ListIssueComments returns the comments of an issue (first page only).
func (c *Client) ListIssueComments(ctx context.Context, issueID string) ([]Comment, error) {
	var comments []Comment
	if err := c.list(ctx, c.projectPath("issues/"+issueID+"/comments/"), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
