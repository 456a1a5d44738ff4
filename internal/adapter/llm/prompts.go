package llm

import "fmt"

const systemPrompt = "You are a helpful assistant."

// Operation names label metrics and logs.
const (
	OpSummarize = "summarize"
	OpQuiz      = "quiz"
	OpExplain   = "explain"
	OpAnswer    = "answer"
)

// Completion budgets per operation.
var maxTokens = map[string]int{
	OpSummarize: 400,
	OpQuiz:      2000,
	OpExplain:   300,
	OpAnswer:    400,
}

func summarizePrompt(text string) string {
	return fmt.Sprintf("Summarize the following text:\n\n%s", text)
}

func quizPrompt(text string, numQuestions int, sentinel string) string {
	return fmt.Sprintf(
		"Generate %d quiz questions and four multiple choice answers for each question from the following text. "+
			"Put the question on its own line and each of the four answers on its own line below it. "+
			"Separate questions with a blank line. "+
			"Mark the correct answer by putting %s at the beginning of it:\n\n%s",
		numQuestions, sentinel, text)
}

func explainPrompt(question, correct, user string) string {
	if user == "" {
		user = "no answer"
	}
	return fmt.Sprintf("Explain why the correct answer to the following question is '%s' and not '%s':\n\n%s",
		correct, user, question)
}

func answerPrompt(excerpts, question string) string {
	return fmt.Sprintf("Using the following transcript as context, please answer the question:\n\nTranscript:\n%s\n\nQuestion:\n%s",
		excerpts, question)
}
