package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, Credentials{Email: "user@example.com", Password: "secret"}.Validate())

	err := Credentials{Email: "not-an-email"}.Validate()
	assert.ErrorContains(t, err, "email: must be a valid email address")
	assert.ErrorContains(t, err, "password: cannot be blank")
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{Email: "new@example.com", Password: "longenough", FirstName: "Ivan", LastName: "Ivanov"}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Password = "short"
	assert.ErrorContains(t, short.Validate(), "password: the length must be between 8 and 128")

	assert.ErrorContains(t, Registration{}.Validate(), "first_name: cannot be blank")
}

func TestPasswordChangeValidate(t *testing.T) {
	assert.NoError(t, PasswordChange{CurrentPassword: "old-password", NewPassword: "new-password"}.Validate())
	assert.ErrorContains(t,
		PasswordChange{CurrentPassword: "same-password", NewPassword: "same-password"}.Validate(),
		"must differ from the current password")
}

func TestDocumentFilter(t *testing.T) {
	yes := true
	f := DocumentFilter{Limit: 20, Search: "act", IsFavorite: &yes}

	assert.Equal(t, 1, f.PageNumber())
	assert.Equal(t, 3, f.WithPage(3).PageNumber())
	assert.Equal(t, 0, f.Page, "WithPage must not modify the receiver")

	q := f.Query()
	assert.Equal(t, 1, q["page"])
	assert.Equal(t, 20, q["limit"])
	assert.Equal(t, "act", q["search"])
	assert.Equal(t, &yes, q["is_favorite"])
	assert.Nil(t, q["status"])
	assert.Nil(t, q["is_archived"])

	assert.NoError(t, f.Validate())
	assert.Error(t, DocumentFilter{Limit: 500}.Validate())
	assert.Error(t, DocumentFilter{Priority: "critical"}.Validate())
	assert.Error(t, DocumentFilter{DateFrom: "01.03.2024"}.Validate())
	assert.NoError(t, DocumentFilter{DateFrom: "2024-03-01", SortOrder: "desc"}.Validate())
}

func TestCounterpartyRequestValidate(t *testing.T) {
	assert.NoError(t, CounterpartyRequest{Name: "ООО Ромашка", INN: "7707083893"}.Validate())
	assert.Error(t, CounterpartyRequest{Name: "Bad INN", INN: "77A"}.Validate())

	bad := "nope"
	assert.Error(t, CounterpartyRequest{Name: "X", INN: "7707083893", Email: &bad}.Validate())
}
