package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a request passes only when every required field is present", prop.ForAll(
		func(includeName, includeEmail, includePassword bool) bool {
			reqMap := map[string]interface{}{}
			if includeName {
				reqMap["name"] = "Jane"
			}
			if includeEmail {
				reqMap["email"] = "jane@example.com"
			}
			if includePassword {
				reqMap["password"] = "longenough"
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/user/register", bytes.NewReader(reqBody))

			var in testRegisterRequest
			err := DecodeAndValidate(req, &in)

			if includeName && includeEmail && includePassword {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PasswordLengthValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords shorter than 8 are rejected", prop.ForAll(
		func(n int) bool {
			reqBody, _ := json.Marshal(map[string]interface{}{
				"name":     "Jane",
				"email":    "jane@example.com",
				"password": strings.Repeat("x", n),
			})
			req := httptest.NewRequest("POST", "/", bytes.NewReader(reqBody))

			var in testRegisterRequest
			err := DecodeAndValidate(req, &in)
			if n >= 8 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Jane","email":"nope","password":"short"}`))

	var in testRegisterRequest
	err := DecodeAndValidate(req, &in)
	require.Error(t, err)

	fields := map[string]string{}
	for _, ve := range FormatValidationErrors(err) {
		fields[ve.Field] = ve.Message
	}
	assert.Equal(t, map[string]string{
		"email":    "Invalid email format",
		"password": "Value is too short",
	}, fields)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "broken": `{"name":`} {
		t.Run(name, func(t *testing.T) {
			var in testRegisterRequest
			err := DecodeAndValidate(httptest.NewRequest("POST", "/", strings.NewReader(body)), &in)
			assert.ErrorIs(t, err, ErrMalformedBody)

			w := httptest.NewRecorder()
			RespondWithDecodeError(w, err)
			assert.Equal(t, 400, w.Code)
			assert.Contains(t, w.Body.String(), "malformed request body")
		})
	}
}
