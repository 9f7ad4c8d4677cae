package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbolis/survey-api/model"
)

func InsertSubmission(ctx context.Context, db Querier, surveyID int64, userID *int64) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO submission (survey_id, user_id) VALUES (?, ?)
		RETURNING id`,
		surveyID,
		userID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return id, nil
}

func InsertAnswer(ctx context.Context, db Querier, questionID, submissionID int64, text string) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO answer (question_id, submission_id, text) VALUES (?, ?, ?)
		RETURNING id`,
		questionID,
		submissionID,
		text,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert answer for question %d: %w", questionID, err)
	}
	return id, nil
}

// PrepareSelectAnswer returns a statement taking (answer_id, option_id).
func PrepareSelectAnswer(ctx context.Context, db Querier) (*sql.Stmt, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO select_answer (answer_id, option_id) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare select answer: %w", err)
	}
	return stmt, nil
}

// SubmissionFilter narrows ListSubmissions; zero fields match everything.
type SubmissionFilter struct {
	SurveyID int64
	UserID   int64
}

func ListSubmissions(ctx context.Context, db Querier, f SubmissionFilter) ([]model.Submission, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, survey_id, user_id, created_date, modified_date
		FROM submission
		WHERE (? = 0 OR survey_id = ?)
			AND (? = 0 OR user_id = ?)
		ORDER BY id`,
		f.SurveyID, f.SurveyID,
		f.UserID, f.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s := model.Submission{}
		err = rows.Scan(&s.ID, &s.SurveyID, &s.UserID, &s.CreatedDate, &s.ModifiedDate)
		if err != nil {
			return nil, fmt.Errorf("list submissions: scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// GetSubmission loads a submission with all of its answers and their
// selections up front, so that callers never need a query per answer.
func GetSubmission(ctx context.Context, db Querier, id int64) (*model.Submission, error) {
	s := &model.Submission{}
	err := db.QueryRowContext(ctx, `
		SELECT id, survey_id, user_id, created_date, modified_date
		FROM submission
		WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.SurveyID, &s.UserID, &s.CreatedDate, &s.ModifiedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", id, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.question_id, a.text, sa.id, sa.option_id
		FROM answer a
		LEFT OUTER JOIN select_answer sa ON (a.id = sa.answer_id)
		WHERE a.submission_id = ?
		ORDER BY a.id, sa.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get submission %d: answers: %w", id, err)
	}
	defer rows.Close()

	s.Answers = []model.Answer{}
	for rows.Next() {
		a := model.Answer{SubmissionID: id}
		var selID, optionID sql.NullInt64
		err = rows.Scan(&a.ID, &a.QuestionID, &a.Text, &selID, &optionID)
		if err != nil {
			return nil, fmt.Errorf("get submission %d: answers: scan: %w", id, err)
		}

		last := len(s.Answers) - 1
		if last < 0 || s.Answers[last].ID != a.ID {
			s.Answers = append(s.Answers, a)
			last++
		}
		if selID.Valid {
			s.Answers[last].Selections = append(s.Answers[last].Selections, model.SelectAnswer{
				ID:       selID.Int64,
				AnswerID: a.ID,
				OptionID: optionID.Int64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get submission %d: answers: %w", id, err)
	}
	return s, nil
}

func DeleteSubmission(ctx context.Context, db Querier, id int64) error {
	return deleteByID(ctx, db, "submission", id)
}
