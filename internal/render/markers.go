// Package render composes the dashboard document. Managed sections are
// bracketed by stable marker comments so re-renders are idempotent and manual
// edits outside the markers survive verbatim.
package render

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
)

// Marker delimiters. The section name is the config key, e.g.
// <!-- dashboard:begin:metrics --> ... <!-- dashboard:end:metrics -->
const (
	markerBeginFmt = "<!-- dashboard:begin:%s -->"
	markerEndFmt   = "<!-- dashboard:end:%s -->"
)

var (
	beginRe = regexp.MustCompile(`^<!-- dashboard:begin:([a-z0-9_]+) -->\s*$`)
	endRe   = regexp.MustCompile(`^<!-- dashboard:end:([a-z0-9_]+) -->\s*$`)
)

// BeginMarker returns the opening delimiter for a section.
func BeginMarker(section string) string { return fmt.Sprintf(markerBeginFmt, section) }

// EndMarker returns the closing delimiter for a section.
func EndMarker(section string) string { return fmt.Sprintf(markerEndFmt, section) }

// segment is either raw passthrough text or a managed section block.
type segment struct {
	section string // "" for raw text
	content string // raw text, or the managed block's inner content
}

// parseSegments splits a document into raw text and managed blocks.
// Unbalanced or nested markers indicate structural corruption and surface as
// a fatal render error.
func parseSegments(doc string) ([]segment, error) {
	var segs []segment
	var raw []string
	var inner []string
	current := "" // section currently open, "" when outside a block

	flushRaw := func() {
		if len(raw) > 0 {
			segs = append(segs, segment{content: strings.Join(raw, "\n")})
			raw = nil
		}
	}

	lines := strings.Split(doc, "\n")
	for _, line := range lines {
		if g := beginRe.FindStringSubmatch(line); g != nil {
			if current != "" {
				return nil, apperrors.RenderFailed(fmt.Sprintf("nested begin marker %q inside open section %q", g[1], current))
			}
			flushRaw()
			current = g[1]
			inner = nil
			continue
		}
		if g := endRe.FindStringSubmatch(line); g != nil {
			if current == "" {
				return nil, apperrors.RenderFailed(fmt.Sprintf("end marker %q without matching begin", g[1]))
			}
			if g[1] != current {
				return nil, apperrors.RenderFailed(fmt.Sprintf("end marker %q does not match open section %q", g[1], current))
			}
			segs = append(segs, segment{section: current, content: strings.Join(inner, "\n")})
			current = ""
			inner = nil
			continue
		}
		if current != "" {
			inner = append(inner, line)
		} else {
			raw = append(raw, line)
		}
	}
	if current != "" {
		return nil, apperrors.RenderFailed(fmt.Sprintf("section %q is never closed", current))
	}
	flushRaw()
	return segs, nil
}

// managedBlock renders a full marker-delimited block for a section.
func managedBlock(section, content string) string {
	var b strings.Builder
	b.WriteString(BeginMarker(section))
	b.WriteString("\n")
	if content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}
	b.WriteString(EndMarker(section))
	return b.String()
}

// MaskSection blanks the inner content of one managed section, leaving the
// rest of the document untouched. The orchestrator uses it to compare runs
// while ignoring the last_updated timestamp. Documents that fail to parse are
// returned unchanged; the caller will treat them as different.
func MaskSection(doc, section string) string {
	segs, err := parseSegments(doc)
	if err != nil {
		return doc
	}
	var parts []string
	for _, s := range segs {
		if s.section == "" {
			parts = append(parts, s.content)
			continue
		}
		if s.section == section {
			parts = append(parts, managedBlock(s.section, ""))
			continue
		}
		parts = append(parts, managedBlock(s.section, s.content))
	}
	return strings.Join(parts, "\n")
}
