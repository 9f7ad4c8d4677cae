package submission

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/log"
)

// Create stores the submission, its answers and their selections in a single
// transaction and returns the new submission id. Nothing is left behind on
// failure.
func Create(ctx context.Context, db *sql.DB, batch *Batch) (id int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create submission: begin: %w", err)
	}
	defer tx.Rollback()

	id, err = write(ctx, tx, batch)
	if err != nil {
		if database.IsUniqueViolation(err) {
			log.WithField("survey", batch.SurveyID).Debugf("submission.create: %s", err)
			return 0, ErrPersistenceConflict
		}
		return 0, fmt.Errorf("create submission: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("create submission: commit: %w", err)
	}

	log.WithFields(log.Fields{
		"survey":     batch.SurveyID,
		"submission": id,
		"answers":    len(batch.Answers),
	}).Debug("submission.create: stored")
	return id, nil
}

func write(ctx context.Context, tx database.Querier, batch *Batch) (int64, error) {
	id, err := database.InsertSubmission(ctx, tx, batch.SurveyID, batch.UserID)
	if err != nil {
		return 0, err
	}

	var selections *sql.Stmt
	for _, a := range batch.Answers {
		if !a.Question.Type.IsChoice() {
			_, err = database.InsertAnswer(ctx, tx, a.Question.ID, id, a.Text)
			if err != nil {
				return 0, err
			}
			continue
		}

		answerID, err := database.InsertAnswer(ctx, tx, a.Question.ID, id, "")
		if err != nil {
			return 0, err
		}

		if selections == nil {
			selections, err = database.PrepareSelectAnswer(ctx, tx)
			if err != nil {
				return 0, err
			}
			defer selections.Close()
		}
		for _, optionID := range a.Selections {
			_, err = selections.ExecContext(ctx, answerID, optionID)
			if err != nil {
				return 0, fmt.Errorf("select option %d for question %d: %w", optionID, a.Question.ID, err)
			}
		}
	}
	return id, nil
}
