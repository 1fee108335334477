package models

import (
	"encoding/json"
	"strings"
)

// Profile is the server-side student profile as returned by profile/{id}.
type Profile struct {
	ID                   string   `json:"id" validate:"required"`
	Name                 string   `json:"name,omitempty"`
	Email                string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone                string   `json:"phone,omitempty"`
	Institution          string   `json:"institution,omitempty"`
	FieldOfStudy         string   `json:"field_of_study,omitempty"`
	CollegeType          string   `json:"college_type,omitempty"`
	EducationLevel       string   `json:"education_level,omitempty"`
	GraduationYear       int      `json:"graduation_year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	AnnualIncomeRange    string   `json:"annual_income_range,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	State                string   `json:"state,omitempty"`
	City                 string   `json:"city,omitempty"`
	ResidencyStatus      string   `json:"residency_status,omitempty"`
	Tokens               int      `json:"tokens" validate:"gte=0"`
	CompletionPercentage float64  `json:"completion_percentage" validate:"gte=0,lte=100"`
	IsVerified           bool     `json:"is_verified,omitempty"`
}

// UserRecord is the persisted @user_data object. It is kept as a raw JSON
// object so fields the client does not model survive a merge.
type UserRecord map[string]any

// ID returns the record's identifier, or "" when it is absent or blank.
func (u UserRecord) ID() string {
	if u == nil {
		return ""
	}
	switch v := u["id"].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return ""
}

// Merge returns a copy of u with every key of patch applied on top.
func (u UserRecord) Merge(patch map[string]any) UserRecord {
	out := make(UserRecord, len(u)+len(patch))
	for k, v := range u {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
