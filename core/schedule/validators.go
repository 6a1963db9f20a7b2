package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/oscardm22/estuguia/core"
)

var (
	timeOrderTag  = "timeorder"
	timeOrderText = "La hora de inicio debe ser antes de la hora de fin"
)

// InitValidators registers schedule-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(scheduleStructValidation, NewSchedule{})
	validate.RegisterStructValidation(scheduleStructValidation, UpdateSchedule{})
	core.RegisterCustomTranslation(validate, translator, timeOrderTag, timeOrderText)
}

// scheduleStructValidation checks that the start time strictly precedes the
// end time. Zero-padded "HH:MM" strings compare correctly as strings.
func scheduleStructValidation(sl validator.StructLevel) {
	var start, end string
	switch s := sl.Current().Interface().(type) {
	case NewSchedule:
		start, end = s.StartTime, s.EndTime
	case UpdateSchedule:
		start, end = s.StartTime, s.EndTime
	}
	if start == "" || end == "" {
		return // covered by the field rules
	}
	if start >= end {
		sl.ReportError(start, "start_time", "StartTime", timeOrderTag, "")
	}
}
