package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/model"
)

// Reply is the answer half of a Result: TextReply, SelectionReply or NoReply.
type Reply interface {
	reply()
}

type TextReply struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type SelectionReply struct {
	ID         int64   `json:"id"`
	Selections []int64 `json:"selections"`
}

// NoReply marks a survey question the submission left unanswered; it renders as {}.
type NoReply struct{}

func (TextReply) reply()      {}
func (SelectionReply) reply() {}
func (NoReply) reply()        {}

type Result struct {
	Question model.Question `json:"question"`
	Answer   Reply          `json:"answer"`
}

// Report is a submission read back question by question.
type Report struct {
	ID          int64     `json:"id"`
	Survey      int64     `json:"survey"`
	User        *int64    `json:"user"`
	CreatedDate time.Time `json:"created_date"`
	Results     []Result  `json:"results"`
}

// Assemble pairs every question of the survey, in order, with the
// submission's answer to it. Answers must already be loaded on sub.
func Assemble(questions []model.Question, sub *model.Submission) []Result {
	results := make([]Result, 0, len(questions))
	for _, q := range questions {
		results = append(results, Result{
			Question: q,
			Answer:   replyFor(q, findAnswer(sub.Answers, q.ID)),
		})
	}
	return results
}

func findAnswer(answers []model.Answer, questionID int64) *model.Answer {
	for i := range answers {
		if answers[i].QuestionID == questionID {
			return &answers[i]
		}
	}
	return nil
}

func replyFor(q model.Question, a *model.Answer) Reply {
	if a == nil {
		return NoReply{}
	}
	if q.Type.IsChoice() {
		selections := make([]int64, 0, len(a.Selections))
		for _, s := range a.Selections {
			selections = append(selections, s.OptionID)
		}
		return SelectionReply{ID: a.ID, Selections: selections}
	}
	return TextReply{ID: a.ID, Text: a.Text}
}

// Load reads a submission and its survey and assembles the report.
func Load(ctx context.Context, db database.Querier, id int64) (*Report, error) {
	sub, err := database.GetSubmission(ctx, db, id)
	if err != nil {
		return nil, err
	}
	survey, err := database.GetSurvey(ctx, db, sub.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", id, err)
	}

	return &Report{
		ID:          sub.ID,
		Survey:      sub.SurveyID,
		User:        sub.UserID,
		CreatedDate: sub.CreatedDate,
		Results:     Assemble(survey.Questions, sub),
	}, nil
}
