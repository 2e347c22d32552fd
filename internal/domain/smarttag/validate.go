package smarttag

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goleaf/api-todo-app/internal/domain/entities"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(dueDateLevel, entities.DueDateCriteria{})
	v.RegisterStructValidation(tagsLevel, entities.TagCriteria{})
	v.RegisterStructValidation(createdDateLevel, entities.CreatedDateCriteria{})
	return v
}

func dueDateLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(entities.DueDateCriteria)
	switch c.Operator {
	case entities.DueBefore, entities.DueAfter:
		if c.Value == nil {
			sl.ReportError(c.Value, "value", "Value", "required_for", string(c.Operator))
		}
	case entities.DueBetween:
		if c.Value == nil {
			sl.ReportError(c.Value, "value", "Value", "required_for", string(c.Operator))
		}
		if c.EndValue == nil {
			sl.ReportError(c.EndValue, "end_value", "EndValue", "required_for", string(c.Operator))
		} else if c.Value != nil && c.EndValue.Before(*c.Value) {
			sl.ReportError(c.EndValue, "end_value", "EndValue", "gtefield", "value")
		}
	}
}

func tagsLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(entities.TagCriteria)
	if c.Mode == entities.TagModeHasSpecific && len(c.TagIDs) == 0 {
		sl.ReportError(c.TagIDs, "tagIds", "TagIDs", "required_for", string(c.Mode))
	}
}

func createdDateLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(entities.CreatedDateCriteria)
	if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
		sl.ReportError(c.End, "end", "End", "gtefield", "start")
	}
}

// Validate checks criteria at the write boundary. It is stricter than
// Compile: anything it accepts compiles. The error, if any, is
// ValidationErrors.
func Validate(c entities.SmartTagCriteria) error {
	var errs ValidationErrors

	check := func(toggle Toggle, enabled bool, block interface{}) {
		if !enabled {
			return
		}
		err := validate.Struct(block)
		if err == nil {
			return
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			errs = append(errs, &ValidationError{Toggle: toggle, Rule: err.Error()})
			return
		}
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{
				Toggle: toggle,
				Field:  fe.Field(),
				Rule:   fe.Tag(),
				Param:  fe.Param(),
			})
		}
	}

	check(ToggleDueDate, c.FilterByDueDate, c.DueDate)
	check(ToggleCategory, c.FilterByCategory, c.Category)
	check(ToggleTags, c.FilterByTags, c.Tags)
	check(ToggleTimeEntries, c.FilterByTimeEntries, c.TimeEntries)
	check(ToggleAttachments, c.FilterByAttachments, c.Attachments)
	check(ToggleCreatedDate, c.FilterByCreatedDate, c.CreatedDate)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReferencedIDs returns the category and tag ids an enabled definition
// points at, for ownership checks by the caller.
func ReferencedIDs(c entities.SmartTagCriteria) (categoryIDs, tagIDs []int) {
	if c.FilterByCategory {
		categoryIDs = c.Category.CategoryIDs
	}
	if c.FilterByTags && c.Tags.Mode == entities.TagModeHasSpecific {
		tagIDs = c.Tags.TagIDs
	}
	return categoryIDs, tagIDs
}
