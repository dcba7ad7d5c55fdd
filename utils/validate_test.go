package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reminderForm struct {
	Name string `json:"name" validate:"required,max=20"`
	At   string `json:"notificationTime" validate:"omitempty,clock"`
	Size int    `json:"size" validate:"gte=1"`
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name  string
		in    reminderForm
		field string
		msg   string
	}{
		{name: "ok", in: reminderForm{Name: "Buddy", At: "09:30", Size: 1}},
		{name: "missing name", in: reminderForm{Size: 1}, field: "name", msg: "name is required"},
		{name: "bad clock", in: reminderForm{Name: "x", At: "24:00", Size: 1}, field: "notificationTime", msg: "notificationTime must be HH:MM"},
		{name: "too small", in: reminderForm{Name: "x", Size: 0}, field: "size", msg: "size must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator.Struct(tt.in)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			field, msg, ok := ValidationMessage(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestValidationMessage_OtherErrors(t *testing.T) {
	_, _, ok := ValidationMessage(assert.AnError)
	assert.False(t, ok)
	_, _, ok = ValidationMessage(nil)
	assert.False(t, ok)
}
