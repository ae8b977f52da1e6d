package quiz

// Import payload shapes. The JSON labels are the exact strings the
// question-authoring tooling produces; they are a compatibility surface
// and must round-trip unchanged.

type OptionInput struct {
	ID        string `json:"ID ответа" validate:"required"`
	Text      string `json:"Текст ответа" validate:"required"`
	IsCorrect bool   `json:"Правильный-неправильный ответ"`
	Comment   string `json:"Комментарий к ответу"`
}

type QuestionInput struct {
	ID      string        `json:"ID вопроса" validate:"required"`
	Title   string        `json:"Формулировка вопроса" validate:"required"`
	Text    string        `json:"Текст вопроса" validate:"required"`
	Answers []OptionInput `json:"Ответы" validate:"required,min=1,dive"`
}

func (q QuestionInput) toQuestion(testID string) Question {
	opts := make([]Option, 0, len(q.Answers))
	for _, a := range q.Answers {
		opts = append(opts, Option{
			ID:         a.ID,
			QuestionID: q.ID,
			Text:       a.Text,
			IsCorrect:  a.IsCorrect,
			Comment:    a.Comment,
		})
	}
	return Question{ID: q.ID, TestID: testID, Title: q.Title, Text: q.Text, Options: opts}
}

// correctCount is used by the exactly-one-correct-option check.
func (q QuestionInput) correctCount() int {
	n := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
