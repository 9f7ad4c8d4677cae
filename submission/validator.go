// Package submission turns a respondent's answers into a stored submission
// and reads stored submissions back as per-question results.
package submission

import (
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/survey-api/model"
)

// Entry is one submitted answer as received from the client.
type Entry struct {
	Question   int64   `json:"question"`
	Text       *string `json:"text,omitempty"`
	Selections []int64 `json:"selections,omitempty"`
}

// Batch is a validated set of answers, ready for Create.
type Batch struct {
	SurveyID int64
	UserID   *int64
	Answers  []ValidAnswer
}

// ValidAnswer holds the normalized payload for one question: Text for TEXT
// questions, de-duplicated option ids for choice questions.
type ValidAnswer struct {
	Question   model.Question
	Text       string
	Selections []int64
}

// Validate checks entries against the survey's questions (options included)
// without touching the store. Each rejected entry contributes one
// EntryError, for the first check it fails.
func Validate(survey *model.Survey, userID *int64, entries []Entry) (*Batch, error) {
	batch := &Batch{
		SurveyID: survey.ID,
		UserID:   userID,
		Answers:  make([]ValidAnswer, 0, len(entries)),
	}

	var result *multierror.Error
	seen := make(map[int64]bool, len(entries))
	for i, entry := range entries {
		answer, err := validateEntry(survey, seen, entry)
		if err != nil {
			err.Index = i
			err.QuestionID = entry.Question
			result = multierror.Append(result, err)
			continue
		}
		batch.Answers = append(batch.Answers, answer)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return batch, nil
}

func validateEntry(survey *model.Survey, seen map[int64]bool, entry Entry) (ValidAnswer, *EntryError) {
	question, ok := survey.Question(entry.Question)
	if !ok {
		return ValidAnswer{}, &EntryError{Kind: QuestionNotInSurvey, Detail: "question not found in survey"}
	}
	if seen[question.ID] {
		return ValidAnswer{}, &EntryError{Kind: DuplicateQuestionInBatch, Detail: "question answered more than once"}
	}
	seen[question.ID] = true

	answer := ValidAnswer{Question: question}

	if question.Type.IsChoice() {
		if len(entry.Selections) == 0 {
			return ValidAnswer{}, &EntryError{Kind: OptionNotFound, Detail: "no option selected"}
		}

		answer.Selections = make([]int64, 0, len(entry.Selections))
		picked := make(map[int64]bool, len(entry.Selections))
		for _, optionID := range entry.Selections {
			if !question.HasOption(optionID) {
				return ValidAnswer{}, &EntryError{
					Kind:   OptionNotFound,
					Detail: fmt.Sprintf("option %d not found for question", optionID),
				}
			}
			if picked[optionID] {
				continue
			}
			picked[optionID] = true
			answer.Selections = append(answer.Selections, optionID)
		}

		if question.Type == model.Select && len(answer.Selections) > 1 {
			return ValidAnswer{}, &EntryError{
				Kind:   MultipleSelectionsForSingleSelect,
				Detail: "can't select multiple options for single-select question",
			}
		}
		return answer, nil
	}

	if entry.Text == nil {
		return ValidAnswer{}, &EntryError{Kind: MissingText, Detail: "text answer required"}
	}
	if utf8.RuneCountInString(*entry.Text) > model.MaxTextLength {
		return ValidAnswer{}, &EntryError{
			Kind:   TextTooLong,
			Detail: fmt.Sprintf("text longer than %d characters", model.MaxTextLength),
		}
	}
	answer.Text = *entry.Text
	return answer, nil
}
