package domain

import "time"

// ApprovalAction is the decision recorded in the approval ledger.
type ApprovalAction string

const (
	ActionApproved ApprovalAction = "Approved"
	ActionRejected ApprovalAction = "Rejected"
)

// QuotationApproval is an immutable ledger row: one per Approve/Reject decision.
// There is no update or delete path for this table.
type QuotationApproval struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuotationID  QuotationID    `gorm:"column:quotation_id;not null;index" json:"quotationId"`
	Version      int            `gorm:"column:version;not null" json:"version"`
	ApproverID   uint           `gorm:"column:approver_id;not null;index" json:"approverId"`
	ApproverRole string         `gorm:"column:approver_role;type:varchar(64)" json:"approverRole"`
	Action       ApprovalAction `gorm:"column:action;type:varchar(20);not null" json:"action"`
	Remarks      string         `gorm:"column:remarks;type:text" json:"remarks"`
	ActionAt     time.Time      `gorm:"column:action_at;not null;index" json:"actionAt"`
}

func (QuotationApproval) TableName() string {
	return "quotation_approvals"
}
