package smarttag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCriteria reports stored criteria that can not be evaluated.
var ErrInvalidCriteria = errors.New("invalid smart tag criteria")

// CriteriaError pinpoints the toggle and field of an invalid definition.
type CriteriaError struct {
	Toggle Toggle
	Field  string
	Reason string
}

func invalid(toggle Toggle, field, reason string) *CriteriaError {
	return &CriteriaError{Toggle: toggle, Field: field, Reason: reason}
}

func (e *CriteriaError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", ErrInvalidCriteria, e.Toggle, e.Field, e.Reason)
}

func (e *CriteriaError) Unwrap() error { return ErrInvalidCriteria }

// ValidationError is one rejected field of a definition being saved.
type ValidationError struct {
	Toggle Toggle `json:"toggle"`
	Field  string `json:"field"`
	Rule   string `json:"rule"`
	Param  string `json:"param,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s.%s failed %s=%s", e.Toggle, e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s.%s failed %s", e.Toggle, e.Field, e.Rule)
}

// ValidationErrors collects every rejected field.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "smart tag validation failed: " + strings.Join(msgs, "; ")
}
