package prompts

import (
	"fmt"
	"strings"
)

// Fixed user-visible responses. The query layer returns these instead of
// raising, so the chat surface never sees an exception.
const (
	NotEnoughInformation = "I don't have enough information to answer that question."
	GenerationApology    = "I encountered an error while generating the response. Please try again."
)

// ContextDelimiter separates retrieved excerpts inside the prompt.
const ContextDelimiter = "\n\n---\n\n"

const answerTemplate = `You are a helpful AI assistant with access to documentation scraped from a website.
Your task is to answer the question based on the provided documentation excerpts.

Important instructions:
1. Base your answer ONLY on the provided documentation
2. If the documentation doesn't fully answer the question, explain what you can determine and what's missing
3. If you need to make assumptions, state them explicitly
4. Use specific examples from the documentation when possible

Documentation excerpts:
%s

Question: %s

Please provide a clear, accurate answer based on the documentation above. If the documentation doesn't contain enough information to fully answer the question, explain what you can determine and what information is missing.`

// FormatSource renders one retrieved excerpt with its originating URL.
func FormatSource(url, text string) string {
	if url == "" {
		url = "unknown"
	}
	return fmt.Sprintf("Source (%s):\n%s", url, text)
}

// BuildAnswerPrompt assembles the grounded prompt from retrieved excerpts
// and the user's question.
func BuildAnswerPrompt(sources []string, question string) string {
	return fmt.Sprintf(answerTemplate, strings.Join(sources, ContextDelimiter), question)
}
