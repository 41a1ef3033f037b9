package contracts

import (
	"signoff/authority"
	"signoff/statemachine"

	"github.com/fundwit/go-commons/types"
)

const (
	StatusDraft             = "draft"
	StatusPendingSignatureA = "pending_signature_a"
	StatusPendingSignatureB = "pending_signature_b"
	StatusActive            = "active"
	StatusExpired           = "expired"
	StatusTerminated        = "terminated"
)

// ContractMachine: pending_signature_a means the contract is waiting on party
// A, party B has already signed. A signature is the only way out of draft and
// pending states; expired and terminated are terminal.
var ContractMachine = statemachine.NewStateMachine(
	[]statemachine.State{
		{Name: StatusDraft},
		{Name: StatusPendingSignatureA},
		{Name: StatusPendingSignatureB},
		{Name: StatusActive},
		{Name: StatusExpired, Category: statemachine.Terminal},
		{Name: StatusTerminated, Category: statemachine.Terminal},
	},
	[]statemachine.Transition{
		{Name: "sign-by-b", From: statemachine.State{Name: StatusDraft},
			To: statemachine.State{Name: StatusPendingSignatureA}},
		{Name: "sign-by-a", From: statemachine.State{Name: StatusDraft},
			To: statemachine.State{Name: StatusPendingSignatureB}},
		{Name: "countersign-by-a", From: statemachine.State{Name: StatusPendingSignatureA},
			To: statemachine.State{Name: StatusActive}},
		{Name: "countersign-by-b", From: statemachine.State{Name: StatusPendingSignatureB},
			To: statemachine.State{Name: StatusActive}},
		{Name: "expire", From: statemachine.State{Name: StatusActive},
			To: statemachine.State{Name: StatusExpired, Category: statemachine.Terminal}},
		{Name: "terminate", From: statemachine.State{Name: StatusActive},
			To: statemachine.State{Name: StatusTerminated, Category: statemachine.Terminal}},
	})

type Contract struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title        string `json:"title"`
	ContractType string `json:"contractType"`

	// party roles are denormalized on purpose: they snapshot the role held at
	// contract creation time, which may differ from the party's current role
	PartyAId   types.ID       `json:"partyAId"`
	PartyARole authority.Role `json:"partyARole"`
	PartyBId   types.ID       `json:"partyBId"`
	PartyBRole authority.Role `json:"partyBRole"`

	FinancialTerms string `json:"financialTerms" sql:"type:TEXT"`

	StartDate types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	EndDate   types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`
	AutoRenew bool            `json:"autoRenew"`

	Status string `json:"status"`

	SignedByAAt types.Timestamp `json:"signedByAAt" sql:"type:DATETIME(6)"`
	SignedByBAt types.Timestamp `json:"signedByBAt" sql:"type:DATETIME(6)"`

	TerminatedAt      types.Timestamp `json:"terminatedAt" sql:"type:DATETIME(6)"`
	TerminationReason string          `json:"terminationReason"`

	CreatedBy  types.ID        `json:"createdBy"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *Contract) TableName() string {
	return "contracts"
}

// EffectiveStatus derives expiry at read time. An active contract whose end
// date has passed is reported expired without a background transition job.
func (r *Contract) EffectiveStatus(now types.Timestamp) string {
	if r.Status == StatusActive && !r.EndDate.IsZero() && r.EndDate.Time().Before(now.Time()) {
		return StatusExpired
	}
	return r.Status
}

func (r *Contract) IsParty(uid types.ID) bool {
	return uid == r.PartyAId || uid == r.PartyBId
}

type ContractClause struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	ContractID types.ID `json:"contractId" gorm:"index"`

	ClauseType string `json:"clauseType"`
	Ordinal    int    `json:"ordinal"`
	Text       string `json:"text" sql:"type:TEXT"`
}

func (r *ContractClause) TableName() string {
	return "contract_clauses"
}

type ContractSignature struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ContractID types.ID `json:"contractId" gorm:"unique_index:uni_contract_signer"`
	UserID     types.ID `json:"userId" gorm:"unique_index:uni_contract_signer"`

	UserRole      authority.Role `json:"userRole"`
	SignatureType string         `json:"signatureType"`
	SignatureData string         `json:"signatureData" sql:"type:TEXT"`
	ConsentText   string         `json:"consentText" sql:"type:TEXT"`

	IpAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`

	SignTime types.Timestamp `json:"signTime" sql:"type:DATETIME(6)"`
}

func (r *ContractSignature) TableName() string {
	return "contract_signatures"
}

type ContractDetail struct {
	Contract

	Clauses    []ContractClause    `json:"clauses"`
	Signatures []ContractSignature `json:"signatures"`
}

type ClauseCreation struct {
	ClauseType string `json:"clauseType" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

type ContractCreation struct {
	Title        string `json:"title" binding:"required,lte=128"`
	ContractType string `json:"contractType" binding:"required,lte=32"`

	PartyAId types.ID `json:"partyAId" binding:"required"`
	PartyBId types.ID `json:"partyBId" binding:"required"`

	FinancialTerms string `json:"financialTerms"`

	StartDate types.Timestamp `json:"startDate"`
	EndDate   types.Timestamp `json:"endDate"`
	AutoRenew bool            `json:"autoRenew"`

	Clauses []ClauseCreation `json:"clauses" binding:"omitempty,dive"`
}

type ContractUpdating struct {
	Title          string `json:"title" binding:"required,lte=128"`
	FinancialTerms string `json:"financialTerms"`

	StartDate types.Timestamp `json:"startDate"`
	EndDate   types.Timestamp `json:"endDate"`
	AutoRenew bool            `json:"autoRenew"`
}

type SignatureCreation struct {
	SignatureType string `json:"signatureType" binding:"required,lte=32"`
	SignatureData string `json:"signatureData" binding:"required"`
	ConsentText   string `json:"consentText" binding:"required"`

	IpAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type TerminationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ContractQuery struct {
	Status string `json:"status" form:"status"`
	Mine   bool   `json:"mine" form:"mine"`
}
