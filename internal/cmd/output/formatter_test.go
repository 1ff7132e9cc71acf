package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() Data {
	return Data{
		Headers: []string{"filename", "mementos", "consecutive_pairs"},
		Rows: [][]string{
			{"story_all_versions.json", "12", "11"},
			{"__TOTAL__", "12", "11"},
		},
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(&buf, sampleData()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "filename,mementos,consecutive_pairs", lines[0])
	assert.Equal(t, "story_all_versions.json,12,11", lines[1])
	assert.Equal(t, "__TOTAL__,12,11", lines[2])
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, sampleData()))

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "filename")
	assert.Contains(t, out, "consecutive pairs")
	assert.Contains(t, out, "story_all_versions.json")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]int{"mementos": 3}
	require.NoError(t, (&TableFormatter{}).Format(&buf, payload))
	assert.Contains(t, buf.String(), `"mementos": 3`)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{Indent: "  "}).Format(&buf, map[string]string{"slug": "x"}))
	assert.Equal(t, "{\n  \"slug\": \"x\"\n}\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, map[string]int{"pairs": 4}))
	assert.Contains(t, buf.String(), "pairs: 4")
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "Consecutive Pairs", Header("consecutive_pairs"))
	assert.Equal(t, "Filename", Header("filename"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
