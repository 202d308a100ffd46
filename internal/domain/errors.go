package domain

import "errors"

// Error taxonomy for the quotation engine. Handlers map these to HTTP status codes with errors.Is;
// services wrap them with fmt.Errorf("%w: ...") when the caller needs more detail.
var (
	ErrValidation           = errors.New("Validation failed")
	ErrQuotationNotFound    = errors.New("Quotation not found")
	ErrItemNotFound         = errors.New("Quotation item not found")
	ErrTermNotFound         = errors.New("Quotation term not found")
	ErrProjectNotFound      = errors.New("Project not found")
	ErrInvalidTransition    = errors.New("Invalid status transition")
	ErrQuotationNotEditable = errors.New("Quotation is not editable")
	ErrAlreadyConverted     = errors.New("Quotation already converted to a project")
	ErrBudgetLocked         = errors.New("Project budget is locked")
	ErrConflictingWrite     = errors.New("Conflicting write, please retry")
	ErrApproverNotAllowed   = errors.New("Approver role is not allowed to approve quotations")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuotationNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrTermNotFound) ||
		errors.Is(err, ErrProjectNotFound)
}
