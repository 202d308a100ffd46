package constants

const (
	ApproveQuotation = "approve_quotation"
	RejectQuotation  = "reject_quotation"
)
