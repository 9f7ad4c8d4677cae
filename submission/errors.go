package submission

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies why an answer entry was rejected.
type Kind string

const (
	QuestionNotInSurvey               Kind = "QuestionNotInSurvey"
	DuplicateQuestionInBatch          Kind = "DuplicateQuestionInBatch"
	OptionNotFound                    Kind = "OptionNotFound"
	MultipleSelectionsForSingleSelect Kind = "MultipleSelectionsForSingleSelect"
	MissingText                       Kind = "MissingText"
	TextTooLong                       Kind = "TextTooLong"
)

// ErrPersistenceConflict is returned when the store rejects a write because
// of a uniqueness constraint. The whole submission is rolled back.
var ErrPersistenceConflict = errors.New("submission conflicts with stored answers")

// EntryError locates a rejected entry by its position in the batch.
type EntryError struct {
	Index      int    `json:"index"`
	QuestionID int64  `json:"question"`
	Kind       Kind   `json:"kind"`
	Detail     string `json:"message"`
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("data[%d] (question %d): %s: %s", e.Index, e.QuestionID, e.Kind, e.Detail)
}

// Failures returns every entry error carried by err, in batch order.
func Failures(err error) []*EntryError {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var out []*EntryError
		for _, e := range merr.Errors {
			var entryErr *EntryError
			if errors.As(e, &entryErr) {
				out = append(out, entryErr)
			}
		}
		return out
	}

	var entryErr *EntryError
	if errors.As(err, &entryErr) {
		return []*EntryError{entryErr}
	}
	return nil
}

// IsInvalid reports whether err is a validation failure rather than a store error.
func IsInvalid(err error) bool {
	return len(Failures(err)) > 0
}
