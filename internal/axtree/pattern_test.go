package axtree

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestGuessPattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no digits stays literal", "All systems nominal", ""},
		{"empty stays literal", "", ""},
		{"bare count", "5 items", `/[\d.,]+ items/`},
		{"grouped number", "1,234 views", `/[\d.,]+ views/`},
		{"byte size", "Download (3.5 MB)", `/Download \([\d.]+\s*[KMGT]i?B\)/`},
		{"binary byte size", "2 GiB free", `/[\d.]+\s*[KMGT]i?B free/`},
		{"clock time", "12:45", `/\d+(?::\d{2})+/`},
		{"clock with seconds", "elapsed 1:02:03", `/elapsed \d+(?::\d{2})+/`},
		{"duration", "retry in 30s", `/retry in [\d.]+\s*(?:ms|s|m|h|d)/`},
		{
			"mixed classes keep document order",
			"2.5 GiB in 45 s",
			`/[\d.]+\s*[KMGT]i?B in [\d.]+\s*(?:ms|s|m|h|d)/`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestGuessPattern(tt.in)
			assert.Equal(t, tt.want, got)
			if got == "" {
				return
			}
			// The generalized pattern must still match the input it came from.
			re, err := regexp.Compile(got[1 : len(got)-1])
			require.NoError(t, err)
			assert.True(t, re.MatchString(tt.in))
		})
	}
}

func TestInformative(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  bool
	}{
		{"empty text never informs", "", "anything", false},
		{"unnamed node keeps all text", "hello", "", true},
		{"exact repeat of the name", "Save changes", "Save changes", false},
		{"fully contained in the name", "Save", "Save changes", false},
		{"mostly novel text informs", "Save changes right now", "Save", true},
		{"barely novel text does not", "abcdefghij", "abcdefghi", false},
		{"just over the line informs", "abcdefghij", "abcdefgh", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, informative(tt.text, tt.label))
		})
	}
}

func TestLongestCommonRun(t *testing.T) {
	assert.Equal(t, "", longestCommonRun("", "abc"))
	assert.Equal(t, "", longestCommonRun("abc", ""))
	assert.Equal(t, "bcd", longestCommonRun("abcde", "xbcdy"))
	assert.Equal(t, "abc", longestCommonRun("abc", "abc"))
}

func TestNodeKey(t *testing.T) {
	t.Run("quotes ordinary names", func(t *testing.T) {
		n := &Node{Role: "button", Name: "Save"}
		assert.Equal(t, `button "Save"`, nodeKey(n, RenderOptions{}))
	})

	t.Run("slash patterns stay unquoted", func(t *testing.T) {
		n := &Node{Role: "status", Name: "7 unread"}
		assert.Equal(t, `status /[\d.,]+ unread/`, nodeKey(n, RenderOptions{Pattern: true}))
	})

	t.Run("nameless nodes are the bare role", func(t *testing.T) {
		n := &Node{Role: "generic"}
		assert.Equal(t, "generic", nodeKey(n, RenderOptions{}))
	})

	t.Run("the key ceiling drops oversized names", func(t *testing.T) {
		n := &Node{Role: "heading", Name: strings.Repeat("a", maxKeyNameLength+1)}
		assert.Equal(t, "heading", nodeKey(n, RenderOptions{}))

		n.Name = strings.Repeat("a", maxKeyNameLength)
		assert.NotEqual(t, "heading", nodeKey(n, RenderOptions{}))
	})
}
