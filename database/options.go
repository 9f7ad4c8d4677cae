package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbolis/survey-api/model"
)

func listOptions(ctx context.Context, db Querier, where string, args ...any) ([]model.Option, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.text, o.created_date, o.modified_date
		FROM question_option o
		`+where+`
		ORDER BY o.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	options := []model.Option{}
	for rows.Next() {
		o := model.Option{}
		err = rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.CreatedDate, &o.ModifiedDate)
		if err != nil {
			return nil, fmt.Errorf("list options: scan: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	return options, nil
}

func ListOptions(ctx context.Context, db Querier) ([]model.Option, error) {
	return listOptions(ctx, db, "")
}

func GetOption(ctx context.Context, db Querier, id int64) (*model.Option, error) {
	options, err := listOptions(ctx, db, "WHERE o.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, ErrNotFound
	}
	return &options[0], nil
}

func InsertOption(ctx context.Context, db Querier, o *model.Option) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO question_option (question_id, text)
		VALUES (?, ?)
		RETURNING id`,
		o.QuestionID,
		o.Text,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert option: %w", err)
	}

	created, err := GetOption(ctx, db, o.ID)
	if err != nil {
		return err
	}
	*o = *created
	return nil
}

// UpdateOption changes the option text; an option never moves to another question.
func UpdateOption(ctx context.Context, db Querier, o *model.Option) error {
	res, err := db.ExecContext(ctx, `
		UPDATE question_option
		SET
			text = ?,
			modified_date = CURRENT_TIMESTAMP
		WHERE id = ?`,
		o.Text,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update option %d: %w", o.ID, err)
	}
	if err := verifyAffected(res); err != nil {
		return err
	}

	updated, err := GetOption(ctx, db, o.ID)
	if err != nil {
		return err
	}
	*o = *updated
	return nil
}

func DeleteOption(ctx context.Context, db Querier, id int64) error {
	return deleteByID(ctx, db, "question_option", id)
}

func CountOptions(ctx context.Context, db Querier, questionID int64) (n int, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT count(*) FROM question_option WHERE question_id = ?`,
		questionID,
	).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count options: %w", err)
	}
	return n, nil
}
