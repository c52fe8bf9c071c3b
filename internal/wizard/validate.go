// Package wizard implements the costing wizard engine: the per-step
// validation rules and the step/navigation state machine.
package wizard

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/schema"
)

// ValidateStep checks the draft against one step's rules. It returns
// nil on acceptance or a VALIDATION_REJECTED error with a user-facing
// message. Validation is step-local: only the step's own field is
// examined, except the style group which validates its sub-fields
// atomically as one unit. Never mutates the draft.
func ValidateStep(step schema.Step, d *costing.WizardDraft) error {
	switch step.Kind {
	case schema.KindStyleGroup:
		return validateStyle(d)
	case schema.KindNumeric:
		return validateNumeric(step, d)
	case schema.KindPercent:
		return validatePercent(step, d)
	case schema.KindInteger:
		return validateInteger(step, d)
	case schema.KindComputed, schema.KindPreview:
		// No user-editable field; always accepted.
		return nil
	}
	return errors.NewInternal(fmt.Errorf("unhandled step kind %q", step.Kind))
}

func validateStyle(d *costing.WizardDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.NewValidationRejected("Style name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return errors.NewValidationRejected("Description is required")
	}
	if d.Photo == nil {
		return errors.NewValidationRejected("A style photo is required")
	}
	if !d.Gauge.IsValid() {
		return errors.NewValidationRejected("Gauge must be one of " + costing.GaugeOptions())
	}

	weight, err := costing.ParseNumber(d.WeightGrams)
	switch {
	case stderrors.Is(err, costing.ErrNotANumber):
		return errors.NewValidationRejected("Weight must be a number")
	case stderrors.Is(err, costing.ErrNegative):
		return errors.NewValidationRejected("Weight must be greater than 0")
	case !weight.Present():
		return errors.NewValidationRejected("Weight is required")
	case !weight.OrZero().IsPositive():
		return errors.NewValidationRejected("Weight must be greater than 0")
	}
	return nil
}

func validateNumeric(step schema.Step, d *costing.WizardDraft) error {
	raw, _ := d.Field(step.Field)
	if strings.TrimSpace(raw) == "" {
		if step.Required {
			return errors.NewValidationRejected(step.Title + " is required")
		}
		// Blank and optional: accepted, resolves to 0 in the formula.
		return nil
	}

	_, err := costing.ParseNumber(raw)
	switch {
	case stderrors.Is(err, costing.ErrNotANumber):
		return errors.NewValidationRejected(step.Title + " must be a number")
	case stderrors.Is(err, costing.ErrNegative):
		return errors.NewValidationRejected(step.Title + " must be 0 or greater")
	}
	return nil
}

func validatePercent(step schema.Step, d *costing.WizardDraft) error {
	raw, _ := d.Field(step.Field)
	if strings.TrimSpace(raw) == "" {
		if step.Required {
			return errors.NewValidationRejected(step.Title + " is required")
		}
		return nil
	}

	_, err := costing.ParsePercent(raw)
	switch {
	case stderrors.Is(err, costing.ErrNotANumber):
		return errors.NewValidationRejected(step.Title + " must be a number")
	case stderrors.Is(err, costing.ErrOutOfRange):
		return errors.NewValidationRejected(step.Title + " must be between 0 and 100")
	}
	return nil
}

func validateInteger(step schema.Step, d *costing.WizardDraft) error {
	raw, _ := d.Field(step.Field)
	if strings.TrimSpace(raw) == "" {
		if step.Required {
			return errors.NewValidationRejected(step.Title + " is required")
		}
		return nil
	}

	_, err := costing.ParseCount(raw)
	switch {
	case stderrors.Is(err, costing.ErrNotANumber):
		return errors.NewValidationRejected(step.Title + " must be a number")
	case stderrors.Is(err, costing.ErrNegative):
		return errors.NewValidationRejected(step.Title + " must be 0 or greater")
	case stderrors.Is(err, costing.ErrNotAnInteger):
		return errors.NewValidationRejected(step.Title + " must be a whole number")
	}
	return nil
}
