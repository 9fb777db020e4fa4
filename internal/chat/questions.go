package chat

import (
	"github.com/google/uuid"

	"github.com/banking/retirement-service/internal/domain"
)

// suggestedQuestionSet is the fixed follow-up question catalog. Each response
// carries fresh IDs so the frontend can treat them as distinct prompts.
var suggestedQuestionSet = []struct {
	text     string
	category string
}{
	{"How much do I need to save monthly?", "planning"},
	{"What investment strategy is best for me?", "investment"},
	{"How does inflation affect my retirement?", "planning"},
	{"What are tax advantages of retirement accounts?", "investment"},
}

// SuggestedQuestions returns follow-up prompts for the next chat turn
func SuggestedQuestions() []domain.SuggestedQuestion {
	questions := make([]domain.SuggestedQuestion, 0, len(suggestedQuestionSet))
	for _, q := range suggestedQuestionSet {
		questions = append(questions, domain.SuggestedQuestion{
			ID:       uuid.NewString(),
			Text:     q.text,
			Category: q.category,
		})
	}
	return questions
}
