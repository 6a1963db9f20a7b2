package user

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/oscardm22/estuguia/core"
)

// Grades of secundaria accepted at registration; both ordinal and spelled
// forms must match case-insensitively.
var gradeNumbers = map[string]int{
	"1ero": 1, "1ro": 1, "primero": 1,
	"2do": 2, "segundo": 2,
	"3ero": 3, "3ro": 3, "tercero": 3,
	"4to": 4, "cuarto": 4,
	"5to": 5, "quinto": 5,
}

// User is the domain profile, independent of the identity provider's
// own record. ID is issued by the identity provider and stable afterwards.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Grade         string    `json:"grade"`
	Section       string    `json:"section,omitempty"`
	School        string    `json:"school,omitempty"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	EmailVerified bool      `json:"email_verified"`
}

// DisplayName upper-cases the first letter of each word in the name.
func (u User) DisplayName() string {
	words := strings.Fields(u.Name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// AcademicInfo formats the grade and optional section for display.
func (u User) AcademicInfo() string {
	if u.Section != "" {
		return u.Grade + "° de secundaria - Sección " + u.Section
	}
	return u.Grade + "° de secundaria"
}

// GradeNumber maps the free-text grade to its numeric rank; 0 when unknown.
func (u User) GradeNumber() int {
	return gradeNumbers[strings.ToLower(u.Grade)]
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,min=5,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"required,min=2,nodigits"`
	Grade           string `json:"grade" validate:"required,grade"`
	Section         string `json:"section"`
	School          string `json:"school"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Grade = core.CleanString(nu.Grade, true /* lower */)
	nu.Section = core.CleanString(nu.Section, true /* lower */)
	return validate.Struct(nu)
}

// Login is the credentials payload for signing in.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return validate.Struct(l)
}

// UpdateProfile defines what information may be provided to modify an
// existing User; empty fields keep their current value.
type UpdateProfile struct {
	Name         string `json:"name" validate:"omitempty,min=2,nodigits"`
	Grade        string `json:"grade" validate:"omitempty,grade"`
	Section      string `json:"section"`
	School       string `json:"school"`
	ProfileImage string `json:"profile_image"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Grade = core.CleanString(up.Grade, true /* lower */)
	return validate.Struct(up)
}

// ChangePassword carries the re-authentication credentials and the new password.
type ChangePassword struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=6"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// ResetPassword requests a password-reset email.
type ResetPassword struct {
	Email string `json:"email" validate:"required,email"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}
