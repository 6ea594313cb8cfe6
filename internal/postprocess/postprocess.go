// Package postprocess removes common LLM artifacts from generated commentary.
//
// Every field of a structured response passes through Clean before it is
// validated, cached or moderated.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Label and preamble echo removal
//  3. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <think>…</think> style blocks. RE2 has no
// backreferences, so each tag pair is listed.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag never
// arrived.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: echoes ---

// echoPatterns match preambles and field labels the model prepends to a
// value. All are anchored at the start and require a colon.
var echoPatterns = []*regexp.Regexp{
	// "Sure, here is the summary:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]?\s*here(?:'s| is)(?: the| a)? (?:summary|analysis|answer)\s*:`),
	// "Here is the summary:" / "Here's a one-sentence summary:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| a)? (?:one-sentence |short |brief )?(?:summary|analysis|answer)\s*:`),
	// "TL;DR:", "Motivation:", "**Method**:" and full-width colons
	regexp.MustCompile(`(?i)^\**(?:tl;?dr|motivation|method|results?|conclusions?)\**\s*[:：]`),
}

func removeEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: quote wrapping ---

// removeQuoteWrapping strips one matching pair of outer quotes:
//
//	"…"  '…'  «…»  “…”  ‘…’  「…」
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') ||
		(first == '「' && last == '」') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
