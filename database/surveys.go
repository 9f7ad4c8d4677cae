package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbolis/survey-api/model"
)

const surveyColumns = `id, title, start_date, end_date, description, created_date, modified_date`

func scanSurvey(row interface{ Scan(...any) error }, s *model.Survey) error {
	return row.Scan(&s.ID, &s.Title, &s.StartDate, &s.EndDate, &s.Description, &s.CreatedDate, &s.ModifiedDate)
}

func InsertSurvey(ctx context.Context, q Querier, s *model.Survey) error {
	row := q.QueryRowContext(ctx, `
		INSERT INTO survey (title, start_date, end_date, description)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		s.Title,
		s.StartDate,
		s.EndDate,
		s.Description,
	)
	err := row.Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	return reloadSurvey(ctx, q, s)
}

func reloadSurvey(ctx context.Context, q Querier, s *model.Survey) error {
	err := scanSurvey(q.QueryRowContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey
		WHERE id = ?`,
		s.ID,
	), s)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get survey %d: %w", s.ID, err)
	}
	return nil
}

// UpdateSurvey changes everything but the start date, which is fixed at creation.
func UpdateSurvey(ctx context.Context, q Querier, s *model.Survey) error {
	res, err := q.ExecContext(ctx, `
		UPDATE survey
		SET
			title = ?,
			end_date = ?,
			description = ?,
			modified_date = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Title,
		s.EndDate,
		s.Description,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update survey %d: %w", s.ID, err)
	}
	if err := verifyAffected(res); err != nil {
		return err
	}
	return reloadSurvey(ctx, q, s)
}

func DeleteSurvey(ctx context.Context, q Querier, id int64) error {
	return deleteByID(ctx, q, "survey", id)
}

func ListSurveys(ctx context.Context, q Querier) ([]model.Survey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		s := model.Survey{}
		if err := scanSurvey(rows, &s); err != nil {
			return nil, fmt.Errorf("list surveys: scan: %w", err)
		}
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	questions, err := listQuestions(ctx, q, "")
	if err != nil {
		return nil, err
	}
	for i := range surveys {
		surveys[i].Questions = []model.Question{}
		for _, question := range questions {
			if question.SurveyID == surveys[i].ID {
				surveys[i].Questions = append(surveys[i].Questions, question)
			}
		}
	}
	return surveys, nil
}

// GetSurvey loads a survey together with all of its questions and their options.
func GetSurvey(ctx context.Context, q Querier, id int64) (*model.Survey, error) {
	s := &model.Survey{ID: id}
	err := reloadSurvey(ctx, q, s)
	if err != nil {
		return nil, err
	}

	s.Questions, err = listQuestions(ctx, q, "WHERE q.survey_id = ?", id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func deleteByID(ctx context.Context, q Querier, table string, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	return verifyAffected(res)
}

func verifyAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}
