// internal/common/utils/validator_test.go

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=30"`
	Plan     string `validate:"omitempty,oneof=free premium platinum"`
}

func TestValidateStructOK(t *testing.T) {
	err := ValidateStruct(&sampleRequest{
		Email:    "user@example.com",
		Username: "alice",
		Plan:     "premium",
	})
	assert.NoError(t, err)
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Username: "alice"})
	assert.ErrorContains(t, err, "Email is required")
}

func TestValidateStructEmail(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Email: "not-an-email", Username: "alice"})
	assert.ErrorContains(t, err, "Email must be a valid email")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&sampleRequest{
		Email:    "user@example.com",
		Username: "alice",
		Plan:     "gold",
	})
	assert.ErrorContains(t, err, "Plan must be one of")
}

func TestValidateStructCollectsAllErrors(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Plan: "gold"})
	assert.ErrorContains(t, err, "Email is required")
	assert.ErrorContains(t, err, "Username is required")
	assert.ErrorContains(t, err, "Plan must be one of")
}
