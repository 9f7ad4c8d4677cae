package database

import (
	"context"
	"fmt"

	"github.com/mbolis/survey-api/model"
)

// listQuestions returns the questions matching where (written against alias q),
// each with its options, using one query for questions and one for options.
func listQuestions(ctx context.Context, db Querier, where string, args ...any) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT q.id, q.survey_id, q.title, q.q_type, q.created_date, q.modified_date
		FROM question q
		`+where+`
		ORDER BY q.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	index := map[int64]int{}
	for rows.Next() {
		q := model.Question{Options: []model.Option{}}
		err = rows.Scan(&q.ID, &q.SurveyID, &q.Title, &q.Type, &q.CreatedDate, &q.ModifiedDate)
		if err != nil {
			return nil, fmt.Errorf("list questions: scan: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	rows.Close()

	if len(questions) == 0 {
		return questions, nil
	}

	options, err := listOptions(ctx, db, `
		WHERE o.question_id IN (
			SELECT q.id FROM question q `+where+`
		)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, nil
}

func ListQuestions(ctx context.Context, db Querier) ([]model.Question, error) {
	return listQuestions(ctx, db, "")
}

func GetQuestion(ctx context.Context, db Querier, id int64) (*model.Question, error) {
	questions, err := listQuestions(ctx, db, "WHERE q.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}
	return &questions[0], nil
}

// InsertQuestion creates the question and, for choice types, one option per
// entry of texts. Run it inside a transaction to keep both parts together.
func InsertQuestion(ctx context.Context, db Querier, q *model.Question, texts []string) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO question (survey_id, title, q_type)
		VALUES (?, ?, ?)
		RETURNING id`,
		q.SurveyID,
		q.Title,
		q.Type,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	if q.Type.IsChoice() && len(texts) > 0 {
		stmt, err := db.PrepareContext(ctx, `
			INSERT INTO question_option (question_id, text)
			VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("insert question: options: prepare: %w", err)
		}
		defer stmt.Close()

		for _, text := range texts {
			_, err = stmt.ExecContext(ctx, q.ID, text)
			if err != nil {
				return fmt.Errorf("insert question: option %q: %w", text, err)
			}
		}
	}

	created, err := GetQuestion(ctx, db, q.ID)
	if err != nil {
		return err
	}
	*q = *created
	return nil
}

func UpdateQuestion(ctx context.Context, db Querier, q *model.Question) error {
	res, err := db.ExecContext(ctx, `
		UPDATE question
		SET
			title = ?,
			q_type = ?,
			modified_date = CURRENT_TIMESTAMP
		WHERE id = ?`,
		q.Title,
		q.Type,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("update question %d: %w", q.ID, err)
	}
	if err := verifyAffected(res); err != nil {
		return err
	}

	updated, err := GetQuestion(ctx, db, q.ID)
	if err != nil {
		return err
	}
	*q = *updated
	return nil
}

func DeleteQuestion(ctx context.Context, db Querier, id int64) error {
	return deleteByID(ctx, db, "question", id)
}
