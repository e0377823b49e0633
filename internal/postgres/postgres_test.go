package postgres

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"itemdesk/internal/apperr"
)

func TestTranslateSerializationFailure(t *testing.T) {
	err := Translate(&pq.Error{Code: "40001"})
	assert.Equal(t, apperr.TransactionFailed, apperr.KindOf(err))
}

func TestTranslateUniqueViolation(t *testing.T) {
	err := Translate(&pq.Error{Code: "23505"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestTranslateForeignKeyViolation(t *testing.T) {
	err := Translate(&pq.Error{Code: "23503"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestTranslatePassesThroughClassified(t *testing.T) {
	original := apperr.New(apperr.NotFound, "item not found")
	assert.Equal(t, original, Translate(original))
}

func TestTranslateUnknownError(t *testing.T) {
	err := Translate(errors.New("connection reset"))
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestTranslateNil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}
