package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/docqa/internal/docqa/store"
)

const groundedSystemPrompt = `You are a document question-answering assistant.
Answer the question using only the information in the provided context.
If the context does not contain the answer, say explicitly that the answer is not found in the uploaded documents. Do not make up facts.
Always reply in the same language as the question.`

const conversationalSystemPrompt = `You are a friendly assistant for a document question-answering service.
No uploaded document is relevant to the user's message, so reply conversationally and briefly.
If the user seems to ask about document content, suggest uploading the relevant PDF or TXT file first.
Always reply in the same language as the user's message.`

// BuildGroundedPrompt 按检索顺序拼接带序号的上下文与问题。
func BuildGroundedPrompt(question string, matches []*store.Match) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, m.FileName, m.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// BuildConversationalPrompt 不带文档上下文的闲聊提示词。
func BuildConversationalPrompt(question string) string {
	return question
}
