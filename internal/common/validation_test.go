package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/internal/common"
)

func TestRequiredRule(t *testing.T) {
	empty := ""
	filled := "value"

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"string", "invoice_number", true},
		{"blank string", "   ", false},
		{"nil", nil, false},
		{"string pointer", &filled, true},
		{"empty string pointer", &empty, false},
		{"nil string pointer", (*string)(nil), false},
		{"non string passes through", 42, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := common.Required("field_key", tt.value)
			if tt.valid {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, "field_key", err.Field)
				assert.Equal(t, "is required", err.Message)
			}
		})
	}
}

func TestMaxLengthRule(t *testing.T) {
	assert.Nil(t, common.MaxLength("filename", "scan.png", 255))
	assert.Nil(t, common.MaxLength("filename", 42, 3), "non-strings are out of scope")
	assert.Nil(t, common.MaxLength("filename", "héllo", 5), "counts runes, not bytes")

	err := common.MaxLength("filename", "abcdef", 3)
	require.NotNil(t, err)
	assert.Equal(t, "must be at most 3 characters", err.Message)
}

func TestUUIDRule(t *testing.T) {
	assert.Nil(t, common.UUID("document_id", "b9c7a2c4-17d1-4b6e-9a2f-3f6f0d6a8e11"))

	err := common.UUID("document_id", "not-a-uuid")
	require.NotNil(t, err)
	assert.Equal(t, "must be a valid UUID", err.Message)

	err = common.UUID("document_id", 7)
	require.NotNil(t, err)
	assert.Equal(t, "must be a string", err.Message)
}

func TestValidatorCollectsAcrossFields(t *testing.T) {
	v := common.NewValidator()
	v.Field("field_key", "", common.Required)
	v.Field("document_id", "nope", common.UUID)
	v.Field("filename", "scan.png", common.Required)

	assert.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 2)
	assert.Contains(t, v.ErrorMessage(), "field 'field_key'")
	assert.Contains(t, v.ErrorMessage(), "; ", "failures join into one message")
}

func TestValidatorErr(t *testing.T) {
	clean := common.NewValidator()
	clean.Field("field_key", "total_amount", common.Required)
	assert.NoError(t, clean.Err())

	dirty := common.NewValidator()
	dirty.Field("field_key", "", common.Required)

	err := dirty.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatus(err), "validation failures map to 400")
}
