package explain

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/exam"
)

const systemPrompt = `You are a patient secondary school tutor helping a student review an exam question they just answered. Explain the correct answer briefly and clearly.`

func buildUserMessage(q exam.Question) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Question type: %s\n", q.Type))
	b.WriteString(fmt.Sprintf("Question: %s\n", q.Content))
	if len(q.Options) > 0 {
		b.WriteString("\nOptions:\n")
		for i, opt := range q.Options {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, opt))
		}
	}
	b.WriteString(fmt.Sprintf("\nCorrect answer: %s\n", q.Answer))

	b.WriteString(`
Instructions:
1. Summarize the key idea behind the correct answer in one or two sentences.
2. Give between one and six short steps that lead from the question to the answer.
3. Keep any math notation exactly as it appears in the question.
4. Do not restate the question and do not add encouragement.`)

	return b.String()
}
