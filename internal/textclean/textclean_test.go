package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeech(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mixed markdown",
			in:   "# Title\n\n**bold** and *italic* [link](http://x)\n- item",
			want: "Title bold and italic link item",
		},
		{
			name: "section glyphs",
			in:   "## 📋 Overview\n📊 Numbers went up",
			want: "Overview Numbers went up",
		},
		{
			name: "numbered list and code",
			in:   "1. first `code`\n2. second",
			want: "first code second",
		},
		{
			name: "nested bullet markers",
			in:   "- - item",
			want: "item",
		},
		{
			name: "only markup",
			in:   "# \n\n**",
			want: "",
		},
		{
			name: "empty",
			in:   "   \n\n",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Speech(tc.in))
		})
	}
}

func TestMarkdownKeepsGlyphs(t *testing.T) {
	assert.Equal(t, "💡 Insight here", Markdown("### 💡 Insight\nhere"))
}

func TestSpeechIsIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\n\n**bold** and *italic* [link](http://x)\n- item",
		"🎯 **Key** points:\n* one\n+ two\n3. three",
		"plain text with   spaces",
		"-  - * deeply\n\n\n  nested",
		"a * b * c",
		strings.Repeat("- ", 10) + "item",
		strings.Repeat("* ", 40) + "deep\n" + strings.Repeat("1. ", 25) + "list",
	}
	for _, in := range inputs {
		once := Speech(in)
		assert.Equal(t, once, Speech(once), "input %q", in)
		assert.Equal(t, Markdown(in), Markdown(Markdown(in)), "input %q", in)
	}
}

func TestSpeechStripsDeeplyNestedMarkers(t *testing.T) {
	assert.Equal(t, "item", Speech(strings.Repeat("- ", 10)+"item"))
	assert.Equal(t, "item", Markdown(strings.Repeat("+ ", 30)+"item"))
}

func TestPreview(t *testing.T) {
	long := "# Heading\n" + strings.Repeat("word ", 40)
	got := Preview(long, PreviewChars)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, PreviewChars+3, len([]rune(got)))

	assert.Equal(t, "short", Preview("**short**", PreviewChars))
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "📋📋", Truncate("📋📋📋", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
