package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalizeReplyKey(t *testing.T) {
	r := Normalize(fromJSON(t, `{"reply":"hello"}`))
	assert.Equal(t, "hello", r.Text)
}

func TestNormalizePriorityOrder(t *testing.T) {
	// reply beats text beats message
	r := Normalize(fromJSON(t, `{"message":"c","text":"b","reply":"a"}`))
	assert.Equal(t, "a", r.Text)

	r = Normalize(fromJSON(t, `{"message":"c","text":"b"}`))
	assert.Equal(t, "b", r.Text)

	r = Normalize(fromJSON(t, `{"message":"c"}`))
	assert.Equal(t, "c", r.Text)
}

func TestNormalizeAnalysisSummaryFallback(t *testing.T) {
	r := Normalize(fromJSON(t, `{"analysis":{"summary":"a bakery that needs leads","score":7}}`))
	assert.Equal(t, "a bakery that needs leads", r.Text)
	require.NotNil(t, r.Analysis)
	assert.Equal(t, float64(7), r.Analysis["score"])
}

func TestNormalizeN8NEnvelope(t *testing.T) {
	r := Normalize(fromJSON(t, `[{"output":"{\"reply\":\"hi\"}"}]`))
	assert.Equal(t, "hi", r.Text)
}

func TestNormalizeN8NPlainTextOutput(t *testing.T) {
	r := Normalize(fromJSON(t, `[{"output":"just plain text"}]`))
	assert.Equal(t, "just plain text", r.Text)
}

func TestNormalizeBlocks(t *testing.T) {
	r := Normalize(fromJSON(t, `{"reply":"ok","blocks":[{"type":"cta"}]}`))
	assert.Equal(t, "ok", r.Text)
	require.Len(t, r.Blocks, 1)
}

func TestNormalizeUnusableShapes(t *testing.T) {
	assert.Empty(t, Normalize(nil).Text)
	assert.Empty(t, Normalize(fromJSON(t, `[]`)).Text)
	assert.Empty(t, Normalize(fromJSON(t, `"just a string"`)).Text)
	assert.Empty(t, Normalize(fromJSON(t, `{"unrelated":true}`)).Text)
}
