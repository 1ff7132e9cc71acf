package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "period question exclamation",
			text: "First one. Second one? Third one! Fourth",
			want: []string{"First one.", "Second one?", "Third one!", "Fourth"},
		},
		{
			name: "newlines split",
			text: "line one\nline two\n\nline three",
			want: []string{"line one", "line two", "line three"},
		},
		{
			name: "no split without following space",
			text: "version 2.5 shipped",
			want: []string{"version 2.5 shipped"},
		},
		{
			name: "consecutive punctuation",
			text: "Really?! Yes.",
			want: []string{"Really?!", "Yes."},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestHasChange(t *testing.T) {
	assert.False(t, HasChange("The  Vote Passed.", "the vote passed."))
	assert.False(t, HasChange("a\nb", "a b"))
	assert.True(t, HasChange("the vote passed", "the vote failed"))
	assert.True(t, HasChange("", "new text"))
}

func TestPresent(t *testing.T) {
	str := func(s string) *string { return &s }
	assert.False(t, Present(nil))
	assert.False(t, Present(str("")))
	assert.False(t, Present(str("  ")))
	assert.False(t, Present(str("null")))
	assert.False(t, Present(str("None")))
	assert.True(t, Present(str("a sentence")))
}

func TestFirstJSONArray(t *testing.T) {
	arr, err := FirstJSONArray(`[1, 2, 3]`)
	assert.NoError(t, err)
	assert.Equal(t, `[1, 2, 3]`, arr)

	arr, err = FirstJSONArray("Here is the result:\n```json\n[{\"a\": \"[not a bracket]\"}]\n```\ndone")
	assert.NoError(t, err)
	assert.Equal(t, `[{"a": "[not a bracket]"}]`, arr)

	arr, err = FirstJSONArray(`prefix [[1],[2]] suffix [3]`)
	assert.NoError(t, err)
	assert.Equal(t, `[[1],[2]]`, arr)

	// Bracket inside a string with an escaped quote.
	arr, err = FirstJSONArray(`[{"s": "quote \" and ] bracket"}]`)
	assert.NoError(t, err)
	assert.Equal(t, `[{"s": "quote \" and ] bracket"}]`, arr)

	_, err = FirstJSONArray("no array here")
	assert.Error(t, err)

	_, err = FirstJSONArray("[1, 2")
	assert.Error(t, err)
}
