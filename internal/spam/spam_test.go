package spam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15"

func TestHoneypotFilled(t *testing.T) {
	v := Check("filled", browserUA, "a perfectly normal message about business")
	assert.True(t, v.Spam)
	assert.Equal(t, "honeypot filled", v.Reason)
}

func TestHoneypotCheckedBeforeContent(t *testing.T) {
	// honeypot wins even when the content would also trip heuristics
	v := Check("x", browserUA, "http://a http://b http://c")
	assert.Equal(t, "honeypot filled", v.Reason)
}

func TestMissingUserAgent(t *testing.T) {
	v := Check("", "", "hello there, I need an agent")
	assert.True(t, v.Spam)
}

func TestBotUserAgentSoftFails(t *testing.T) {
	v := Check("", "curl/8.4.0", "hello there, I need an agent for my shop")
	assert.False(t, v.Spam, "bot UA must not hard-block")
	assert.Equal(t, "suspicious-ua-only", v.Reason)
}

func TestBotUserAgentStillRunsContentChecks(t *testing.T) {
	v := Check("", "python-requests/2.31", "buy https://a.com https://b.com https://c.com")
	assert.True(t, v.Spam)
	assert.Equal(t, "too many links", v.Reason)
}

func TestTooManyLinks(t *testing.T) {
	v := Check("", browserUA, "check https://a.com and http://b.com and https://c.com")
	assert.True(t, v.Spam)
	assert.Equal(t, "too many links", v.Reason)

	v = Check("", browserUA, "my site is https://a.com and also http://b.com")
	assert.False(t, v.Spam)
}

func TestCharacterRepetition(t *testing.T) {
	v := Check("", browserUA, strings.Repeat("a", 30)+" hello")
	assert.True(t, v.Spam)
	assert.Equal(t, "character repetition", v.Reason)

	// short strings are exempt from the ratio check
	v = Check("", browserUA, "aaaa")
	assert.False(t, v.Spam)
}

func TestSpamKeywords(t *testing.T) {
	v := Check("", browserUA, "best casino bonuses and viagra deals for you")
	assert.True(t, v.Spam)
	assert.Equal(t, "spam keywords", v.Reason)

	v = Check("", browserUA, "سایت شرط بندی با سود تضمینی برای شما")
	assert.True(t, v.Spam)

	// a single keyword is not enough
	v = Check("", browserUA, "we run a casino night fundraiser for charity")
	assert.False(t, v.Spam)
}

func TestCleanSubmission(t *testing.T) {
	v := Check("", browserUA, "I run a small bakery and want to automate my Instagram replies.")
	assert.False(t, v.Spam)
	assert.Empty(t, v.Reason)
}
