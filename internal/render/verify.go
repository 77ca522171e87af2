package render

import (
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
)

// Issue is a single lint finding against a rendered document.
type Issue struct {
	Message string
}

func (i Issue) String() string { return i.Message }

// Verify checks a document's structural health: marker pairs must balance and
// the markdown must parse into a non-trivial AST. It is an analysis API; it
// never rewrites the document.
func Verify(doc []byte) ([]Issue, error) {
	var issues []Issue

	if _, err := parseSegments(string(doc)); err != nil {
		msg := err.Error()
		// Surface the marker-level reason rather than the generic wrapper.
		if de, ok := err.(*apperrors.DashboardError); ok {
			if reason, ok := de.Context["reason"].(string); ok {
				msg = reason
			}
		}
		issues = append(issues, Issue{Message: msg})
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(doc))
	if root == nil {
		return issues, fmt.Errorf("markdown parser returned no document")
	}

	// An empty heading renders as "## " and usually means a templating slip.
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			if h.ChildCount() == 0 {
				issues = append(issues, Issue{Message: fmt.Sprintf("empty heading at level %d", h.Level)})
			}
		}
		return gmast.WalkContinue, nil
	})

	return issues, nil
}
