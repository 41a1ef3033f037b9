package review

import (
	"signoff/contentstore"
	"signoff/statemachine"

	"github.com/fundwit/go-commons/types"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ReviewMachine is the full lifecycle of a content submission. Both review
// outcomes are terminal, a reviewed submission is never touched again.
var ReviewMachine = statemachine.NewStateMachine(
	[]statemachine.State{
		{Name: StatusPending},
		{Name: StatusApproved, Category: statemachine.Terminal},
		{Name: StatusRejected, Category: statemachine.Terminal},
	},
	[]statemachine.Transition{
		{Name: "approve", From: statemachine.State{Name: StatusPending},
			To: statemachine.State{Name: StatusApproved, Category: statemachine.Terminal}},
		{Name: "reject", From: statemachine.State{Name: StatusPending},
			To: statemachine.State{Name: StatusRejected, Category: statemachine.Terminal}},
	})

type ContentSubmission struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ContentType contentstore.ContentType `json:"contentType" gorm:"unique_index:uni_pending_content"`
	ContentID   types.ID                 `json:"contentId" gorm:"unique_index:uni_pending_content"`

	SubmittedBy types.ID `json:"submittedBy"`
	Status      string   `json:"status"`

	// PendingFlag is set while the submission is pending and NULL once it is
	// reviewed. MySQL unique indexes skip NULL rows, so uni_pending_content
	// admits at most one pending submission per content item and the
	// duplicate-submission race is closed at the storage layer.
	PendingFlag *bool `json:"-" gorm:"unique_index:uni_pending_content"`

	ReviewedBy  types.ID `json:"reviewedBy"`
	ReviewNotes string   `json:"reviewNotes"`

	SubmitTime types.Timestamp `json:"submitTime" sql:"type:DATETIME(6)"`
	ReviewTime types.Timestamp `json:"reviewTime" sql:"type:DATETIME(6)"`
}

func (r *ContentSubmission) TableName() string {
	return "content_submissions"
}

type SubmissionCreation struct {
	ContentType contentstore.ContentType `json:"contentType" binding:"required"`
	ContentID   types.ID                 `json:"contentId" binding:"required"`
}

type ReviewNote struct {
	Notes string `json:"notes"`
}

type RejectionNote struct {
	Notes string `json:"notes" binding:"required"`
}

type SubmissionQuery struct {
	Status      string                   `json:"status" form:"status"`
	ContentType contentstore.ContentType `json:"contentType" form:"contentType"`
}
