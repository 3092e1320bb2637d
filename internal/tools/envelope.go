package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ContentTypeText is the only content type tools produce.
const ContentTypeText = "text"

// TextContent is one text block of an Envelope.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the uniform result of every tool invocation, successful or not.
type Envelope struct {
	IsError bool          `json:"isError"`
	Content []TextContent `json:"content"`
}

// TextEnvelope returns a successful envelope carrying text.
func TextEnvelope(text string) *Envelope {
	return &Envelope{
		Content: []TextContent{{Type: ContentTypeText, Text: text}},
	}
}

// ErrorEnvelope returns an error envelope carrying text.
func ErrorEnvelope(text string) *Envelope {
	return &Envelope{
		IsError: true,
		Content: []TextContent{{Type: ContentTypeText, Text: text}},
	}
}

// ErrorEnvelopef formats an error envelope.
func ErrorEnvelopef(format string, args ...any) *Envelope {
	return ErrorEnvelope(fmt.Sprintf(format, args...))
}

// Append adds another text block.
func (e *Envelope) Append(text string) *Envelope {
	e.Content = append(e.Content, TextContent{Type: ContentTypeText, Text: text})
	return e
}

// Text joins all text blocks with newlines.
func (e *Envelope) Text() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Content))
	for _, c := range e.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

// ToCallToolResult converts the envelope into an MCP tool result.
func (e *Envelope) ToCallToolResult() *mcp.CallToolResult {
	if e == nil {
		return mcp.NewToolResultError("empty tool result")
	}
	result := &mcp.CallToolResult{IsError: e.IsError}
	for _, c := range e.Content {
		result.Content = append(result.Content, mcp.NewTextContent(c.Text))
	}
	return result
}
