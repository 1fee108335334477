package models

// SignupForm is the body of create-user.
type SignupForm struct {
	Name     string `json:"name" validate:"required,min=2" example:"Asha Rao"`
	Email    string `json:"email" validate:"required,email" example:"asha@example.com"`
	Phone    string `json:"phone" validate:"required,e164" example:"+919876543210"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

// OTPForm is the body of verify-otp.
type OTPForm struct {
	Email string `json:"email" validate:"required,email" example:"asha@example.com"`
	OTP   string `json:"otp" validate:"required,len=6,numeric" example:"123456"`
}

// ForgotPasswordForm is the body of forgot-password.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email" example:"asha@example.com"`
}

// ResetPasswordForm completes a forgot-password exchange.
type ResetPasswordForm struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthResult is the data payload of verify-otp.
type AuthResult struct {
	Token string     `json:"token" validate:"required"`
	User  UserRecord `json:"user" validate:"required"`
}

// PersonalForm is the identity step of onboarding.
type PersonalForm struct {
	Name        string `json:"name" validate:"required,min=2"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required,oneof=male female other prefer_not_to_say"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
}

// EducationForm is the education step of onboarding.
type EducationForm struct {
	Institution    string `json:"institution" validate:"required"`
	FieldOfStudy   string `json:"field_of_study" validate:"required"`
	CollegeType    string `json:"college_type" validate:"required"`
	EducationLevel string `json:"education_level" validate:"required"`
	GraduationYear int    `json:"graduation_year" validate:"required,gte=1950,lte=2100"`
}

// FinancialForm is the financial step of onboarding.
type FinancialForm struct {
	AnnualIncomeRange string `json:"annual_income_range" validate:"required"`
	FamilySize        int    `json:"family_size" validate:"required,gte=1,lte=30"`
	HasScholarship    bool   `json:"has_scholarship"`
	EarningMembers    int    `json:"earning_members" validate:"gte=0,ltefield=FamilySize"`
}

// InterestsForm is the interests step of onboarding.
type InterestsForm struct {
	Interests []string `json:"interests" validate:"required,min=1,max=10,dive,required"`
}

// ResidencyForm is the residency step of onboarding. Document is an
// optional proof upload sent as multipart form data.
type ResidencyForm struct {
	State           string    `json:"state" validate:"required"`
	City            string    `json:"city" validate:"required"`
	PinCode         string    `json:"pin_code" validate:"required,len=6,numeric"`
	ResidencyStatus string    `json:"residency_status" validate:"required,oneof=resident non_resident"`
	Document        *Document `json:"-"`
}

// Document is a file attached to a multipart request.
type Document struct {
	FileName string
	Content  []byte
}

// ReferenceItem is one entry of a reference-data list (institutions,
// income ranges, ...).
type ReferenceItem struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}
