package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRecordID(t *testing.T) {
	assert.Equal(t, "", UserRecord(nil).ID())
	assert.Equal(t, "", UserRecord{"name": "x"}.ID())
	assert.Equal(t, "", UserRecord{"id": "   "}.ID())
	assert.Equal(t, "u1", UserRecord{"id": "u1"}.ID())
	assert.Equal(t, "42", UserRecord{"id": float64(42)}.ID())
}

func TestUserRecordMergeKeepsExistingFields(t *testing.T) {
	base := UserRecord{"id": "u1", "email": "a@example.com", "tokens": float64(1)}
	merged := base.Merge(map[string]any{"tokens": float64(5), "institution": "IIT"})

	assert.Equal(t, "a@example.com", merged["email"])
	assert.Equal(t, float64(5), merged["tokens"])
	assert.Equal(t, "IIT", merged["institution"])
	// original untouched
	assert.Equal(t, float64(1), base["tokens"])
}

func TestEnvelopeOK(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"data":null}`), &env))
	assert.False(t, env.OK())

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"data":{"id":"u1"}}`), &env))
	assert.True(t, env.OK())

	env = Envelope{Success: true}
	assert.True(t, env.OK())
	assert.False(t, (*Envelope)(nil).OK())
}

func TestValidateProfile(t *testing.T) {
	require.NoError(t, Validate(Profile{ID: "u1", Tokens: 5}))

	err := Validate(Profile{Tokens: 5})
	require.Error(t, err)
	assert.Equal(t, "id is required", ValidationMessage(err))

	assert.Error(t, Validate(Profile{ID: "u1", CompletionPercentage: 120}))
	assert.Error(t, Validate(Profile{ID: "u1", Tokens: -1}))
}

func TestValidateForms(t *testing.T) {
	ok := FinancialForm{AnnualIncomeRange: "0-2L", FamilySize: 4, EarningMembers: 1}
	require.NoError(t, Validate(ok))

	bad := ok
	bad.EarningMembers = 5
	assert.Error(t, Validate(bad))

	assert.Error(t, Validate(InterestsForm{}))
	assert.Error(t, Validate(InterestsForm{Interests: []string{""}}))
	assert.NoError(t, Validate(InterestsForm{Interests: []string{"robotics"}}))

	err := Validate(SignupForm{Name: "Asha", Email: "nope", Phone: "+919876543210", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid email address", ValidationMessage(err))
}

func TestValidateValue(t *testing.T) {
	perks := []Perk{{ID: "p1", Title: "Coffee"}, {ID: "p2"}}
	err := ValidateValue(&perks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")

	assert.NoError(t, ValidateValue(&Profile{ID: "u1"}))
	assert.NoError(t, ValidateValue((*Profile)(nil)))
	assert.NoError(t, ValidateValue(map[string]any{"x": 1}))
}
