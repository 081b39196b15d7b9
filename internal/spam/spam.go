// Package spam screens submissions for abuse signals. Checks run cheapest
// first and short-circuit on the first hard positive; the user-agent check
// never hard-blocks on its own.
package spam

import "strings"

// Verdict is the screening outcome. A non-empty Reason with Spam=false marks
// a soft signal kept for the audit log.
type Verdict struct {
	Spam   bool   `json:"is_spam"`
	Reason string `json:"reason,omitempty"`
}

// scripted-client and generic bot signatures; matching is a weak signal, so
// these annotate the verdict instead of blocking.
var botSignatures = []string{
	"curl", "wget", "python-requests", "python-urllib", "go-http-client",
	"java/", "okhttp", "scrapy", "libwww", "httpclient", "phantomjs",
	"headlesschrome", "bot", "spider", "crawler",
}

// Bilingual (English/Persian) spam vocabulary; two or more hits flag the text.
var spamKeywords = []string{
	"viagra", "casino", "jackpot", "crypto giveaway", "forex signal",
	"seo service", "backlink", "guest post", "adult content", "escort",
	"loan approval", "work from home", "earn money fast",
	"شرط بندی", "کازینو", "قمار", "وام فوری", "درآمد میلیونی",
	"سایت شرط", "بدون ضامن", "سود تضمینی",
}

const (
	maxLinks        = 3
	repetitionLimit = 0.30
	minHeuristicLen = 20
)

// Check screens one submission. The honeypot runs first since it is free and
// deterministic; content heuristics run last and only when the user agent
// passed.
func Check(honeypot, userAgent, freeText string) Verdict {
	if strings.TrimSpace(honeypot) != "" {
		return Verdict{Spam: true, Reason: "honeypot filled"}
	}

	if strings.TrimSpace(userAgent) == "" {
		return Verdict{Spam: true, Reason: "missing user agent"}
	}
	softReason := ""
	if isBotAgent(userAgent) {
		softReason = "suspicious-ua-only"
	}

	if v := checkContent(freeText); v.Spam {
		return v
	}
	return Verdict{Reason: softReason}
}

func isBotAgent(ua string) bool {
	lower := strings.ToLower(ua)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

func checkContent(text string) Verdict {
	if text == "" {
		return Verdict{}
	}
	lower := strings.ToLower(text)

	links := strings.Count(lower, "http://") + strings.Count(lower, "https://")
	if links >= maxLinks {
		return Verdict{Spam: true, Reason: "too many links"}
	}

	if repetitionRatio(text) > repetitionLimit {
		return Verdict{Spam: true, Reason: "character repetition"}
	}

	hits := 0
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= 2 {
				return Verdict{Spam: true, Reason: "spam keywords"}
			}
		}
	}
	return Verdict{}
}

// repetitionRatio is the most frequent rune's share of the text length.
// Short texts are exempt since they skew the ratio.
func repetitionRatio(text string) float64 {
	runes := []rune(text)
	if len(runes) < minHeuristicLen {
		return 0
	}
	counts := make(map[rune]int)
	most := 0
	for _, r := range runes {
		counts[r]++
		if counts[r] > most {
			most = counts[r]
		}
	}
	return float64(most) / float64(len(runes))
}
