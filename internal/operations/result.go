package operations

import (
	"fmt"
	"strings"

	"github.com/jafarshop/shopgateway/pkg/errors"
)

// Content is one block of rendered output
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URI  string `json:"uri,omitempty"`
	Role string `json:"role,omitempty"`
}

// Result is what every registry call returns. Failures are results too:
// IsError is set and ErrorKind says which part of the pipeline failed.
type Result struct {
	Operation string      `json:"operation"`
	Content   []Content   `json:"content"`
	IsError   bool        `json:"isError,omitempty"`
	ErrorKind errors.Kind `json:"errorKind,omitempty"`
}

// Text joins the text of every content block
func (r Result) Text() string {
	texts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n")
}

func textResult(operation, text string) Result {
	return Result{
		Operation: operation,
		Content:   []Content{{Type: "text", Text: text}},
	}
}

func failureResult(operation, action string, err error) Result {
	return Result{
		Operation: operation,
		Content:   []Content{{Type: "text", Text: fmt.Sprintf("Error %s: %s", action, err.Error())}},
		IsError:   true,
		ErrorKind: errors.KindOf(err),
	}
}
