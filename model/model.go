package model

import "time"

// MaxTextLength bounds titles, descriptions, option texts and text answers.
const MaxTextLength = 140

type Survey struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	StartDate    Date       `json:"start_date"`
	EndDate      Date       `json:"end_date"`
	Description  string     `json:"description"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate time.Time  `json:"modified_date"`
	Questions    []Question `json:"questions"`
}

// Question returns the survey question with the given id, if the survey owns one.
func (s *Survey) Question(id int64) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type Question struct {
	ID           int64        `json:"id"`
	SurveyID     int64        `json:"survey"`
	Title        string       `json:"title"`
	Type         QuestionType `json:"q_type"`
	CreatedDate  time.Time    `json:"created_date"`
	ModifiedDate time.Time    `json:"modified_date"`
	Options      []Option     `json:"options"`
}

// HasOption reports whether optionID is one of the question's options.
func (q *Question) HasOption(optionID int64) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

type Option struct {
	ID           int64     `json:"id"`
	QuestionID   int64     `json:"question"`
	Text         string    `json:"text"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
}

type Submission struct {
	ID           int64     `json:"id"`
	SurveyID     int64     `json:"survey"`
	UserID       *int64    `json:"user"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
	Answers      []Answer  `json:"-"`
}

// Answer is one response to one question of a submission. Text is only
// meaningful for TEXT questions, Selections only for choice questions.
type Answer struct {
	ID           int64
	QuestionID   int64
	SubmissionID int64
	Text         string
	Selections   []SelectAnswer
}

type SelectAnswer struct {
	ID       int64
	AnswerID int64
	OptionID int64
}

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	IsAdmin      bool
}
