package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no thinking blocks",
			input:    "The paper proposes a sparse attention scheme.",
			expected: "The paper proposes a sparse attention scheme.",
		},
		{
			name:     "think block before answer",
			input:    "<think>The abstract says...</think>A new tokenizer.",
			expected: "A new tokenizer.",
		},
		{
			name:     "reasoning block in middle",
			input:    "Start<reasoning>Analyzing</reasoning>End",
			expected: "StartEnd",
		},
		{
			name:     "multiple blocks",
			input:    "<thinking>First</thinking>middle<reflection>Second</reflection>",
			expected: "middle",
		},
		{
			name:     "truncated block",
			input:    "Before<think>cut off mid-thought",
			expected: "Before",
		},
		{
			name:     "uppercase tags",
			input:    "<THINK>x</THINK>kept",
			expected: "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeThinkingBlocks(tt.input)
			if result != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveEchoes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no echo",
			input:    "A diffusion model for video.",
			expected: "A diffusion model for video.",
		},
		{
			name:     "here is the summary",
			input:    "Here is the summary: A diffusion model.",
			expected: "A diffusion model.",
		},
		{
			name:     "here's a one-sentence summary",
			input:    "Here's a one-sentence summary: Text",
			expected: "Text",
		},
		{
			name:     "sure preamble",
			input:    "Sure, here is the analysis: Done",
			expected: "Done",
		},
		{
			name:     "tldr label",
			input:    "TL;DR: Faster training.",
			expected: "Faster training.",
		},
		{
			name:     "bold field label",
			input:    "**Motivation**: Existing methods are slow.",
			expected: "Existing methods are slow.",
		},
		{
			name:     "full-width colon label",
			input:    "Conclusion：有效",
			expected: "有效",
		},
		{
			name:     "label not at start",
			input:    "The method: is novel",
			expected: "The method: is novel",
		},
		{
			name:     "label without colon",
			input:    "Method overview is simple",
			expected: "Method overview is simple",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeEchoes(tt.input)
			if result != tt.expected {
				t.Errorf("removeEchoes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveQuoteWrapping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"single char", "a", "a"},
		{"no quotes", "Hello world", "Hello world"},
		{"double quotes", "\"Hello world\"", "Hello world"},
		{"guillemets", "«Hello world»", "Hello world"},
		{"curly double quotes", "“Hello world”", "Hello world"},
		{"corner brackets", "「提出了新方法」", "提出了新方法"},
		{"unmatched quotes", "\"Hello world'", "\"Hello world'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeQuoteWrapping(tt.input)
			if result != tt.expected {
				t.Errorf("removeQuoteWrapping(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	input := "<think>hmm</think>\n TL;DR: \"A compact vision transformer.\" "
	expected := "A compact vision transformer."

	if result := Clean(input); result != expected {
		t.Errorf("Clean(%q) = %q, want %q", input, result, expected)
	}
}
