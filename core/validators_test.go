package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDraft struct {
	Title   string `json:"title" validate:"notblank"`
	Credits string `json:"creditUnits" validate:"required,number"`
}

func TestTranslateValidationErrors(t *testing.T) {
	validate, translator := NewValidator()

	err := validate.Struct(sampleDraft{Title: "   ", Credits: "three"})
	require.Error(t, err)

	vErr, ok := AsValidation(TranslateValidationErrors(err, translator))
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"title":       "this field cannot be blank",
		"creditUnits": "creditUnits must be a valid number",
	}, vErr.FieldMap())

	err = validate.Struct(sampleDraft{Title: "Algebra"})
	vErr, ok = AsValidation(TranslateValidationErrors(err, translator))
	require.True(t, ok)
	assert.Equal(t, map[string]string{"creditUnits": "this field is required"}, vErr.FieldMap())

	other := errors.New("boom")
	assert.Equal(t, other, TranslateValidationErrors(other, translator))
}

func TestErrorClassification(t *testing.T) {
	reqErr := errors.Wrap(&RequestError{Op: "GET /courses", StatusCode: 500}, "loading courses")
	assert.True(t, IsRequest(reqErr))
	assert.False(t, IsValidation(reqErr))

	valErr := errors.Wrap(NewValidationError(nil, FieldError{Field: "title", Error: "required"}), "submitting")
	assert.True(t, IsValidation(valErr))
	assert.False(t, IsRequest(valErr))

	assert.True(t, IsLoginRequired(errors.Wrap(ErrLoginRequired, "deleting announcement")))
	assert.Equal(t, "GET /courses: 500 Internal Server Error", errors.Cause(reqErr).Error())
}
