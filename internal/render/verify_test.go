package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyCleanDocument(t *testing.T) {
	doc := strings.Join([]string{
		"# Jane Doe",
		"",
		BeginMarker("about"),
		"## About Me",
		"Jane Doe — Coastal University",
		EndMarker("about"),
		"",
	}, "\n")

	issues, err := Verify([]byte(doc))
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestVerifyFlagsUnbalancedMarkers(t *testing.T) {
	doc := BeginMarker("about") + "\ndangling content\n"
	issues, err := Verify([]byte(doc))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "never closed")
}

func TestVerifyFlagsEmptyHeading(t *testing.T) {
	issues, err := Verify([]byte("# Jane Doe\n\n##\n\ncontent\n"))
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	require.Contains(t, issues[0].Message, "empty heading")
}
