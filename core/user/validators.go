package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/oscardm22/estuguia/core"
)

var (
	gradeTag  = "grade"
	gradeText = "Grado no válido. Use: 1ero, 2do, 3ero, 4to, 5to"

	// accepted registration forms; matched case-insensitively
	validGrades = []string{
		"1ero", "primero",
		"2do", "segundo",
		"3ero", "tercero",
		"4to", "cuarto",
		"5to", "quinto",
	}
)

// InitValidators registers user-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)
}

// gradeValidation checks the grade against the accepted secundaria forms.
func gradeValidation(fl validator.FieldLevel) bool {
	val := strings.ToLower(fl.Field().String())
	for _, g := range validGrades {
		if val == g {
			return true
		}
	}
	return false
}
