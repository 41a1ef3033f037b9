package contracts

import (
	"signoff/audit"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/gate"
	"signoff/idgen"
	"signoff/persistence"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var SignContractFunc = SignContract

// SignContract collects one party's signature and recomputes the contract
// status inside the same transaction, so a partially signed state is never
// observable. The permission alone is not enough: the signer must be party A
// or party B of this very contract.
func SignContract(id types.ID, creation *SignatureCreation, s *session.Session) (*ContractDetail, error) {
	decision, err := gate.AuthorizeFunc(s, "contracts.sign",
		authority.Permissions{authority.ContractsSign}, gate.All)
	if err != nil {
		return nil, err
	}

	var signed Contract
	var signature ContractSignature
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		contract, err := findContractForUpdate(tx, id)
		if err != nil {
			return err
		}
		if !contract.IsParty(s.Identity.ID) {
			if err := gate.RecordForbidden(s, decision.Role, "contracts.sign", audit.Properties{
				"reason": "not_a_party", "contractId": contract.ID.String(),
			}); err != nil {
				return err
			}
			return bizerror.ErrForbidden
		}

		if (s.Identity.ID == contract.PartyAId && !contract.SignedByAAt.IsZero()) ||
			(s.Identity.ID == contract.PartyBId && !contract.SignedByBAt.IsZero()) {
			return bizerror.ErrAlreadySigned
		}

		now := types.CurrentTimestamp()
		toStatus := nextStatusAfterSigning(contract, s.Identity.ID)
		// a terminated or expired contract is never silently reactivated by a
		// late signature; expiry is derived at read time here as well
		if !ContractMachine.CanTransit(contract.EffectiveStatus(now), toStatus) {
			return bizerror.ErrContractNotSignable
		}

		signature = ContractSignature{
			ID:         idgen.NextID(contractIdWorker),
			ContractID: contract.ID,
			UserID:     s.Identity.ID,
			UserRole:   decision.Role,

			SignatureType: creation.SignatureType,
			SignatureData: creation.SignatureData,
			ConsentText:   creation.ConsentText,
			IpAddress:     creation.IpAddress,
			UserAgent:     creation.UserAgent,

			SignTime: now,
		}
		// uni_contract_signer closes the double-click race: the second insert
		// for the same (contract, user) pair fails here, whatever interleaving
		// the two requests had
		if err := tx.Create(&signature).Error; err != nil {
			if persistence.IsDuplicateEntryError(err) {
				return bizerror.ErrAlreadySigned
			}
			return err
		}

		updates := map[string]interface{}{"status": toStatus}
		if s.Identity.ID == contract.PartyAId {
			updates["signed_by_a_at"] = now
		} else {
			updates["signed_by_b_at"] = now
		}
		if err := tx.Model(&Contract{}).Where(&Contract{ID: contract.ID}).
			Updates(updates).Error; err != nil {
			return err
		}

		if _, err := audit.Record(audit.Recording{
			Action: "contracts.sign", EntityType: "contract", EntityID: contract.ID,
			OldValue: audit.Properties{"status": contract.Status},
			NewValue: audit.Properties{"status": toStatus},
			Metadata: audit.Properties{"signatureType": creation.SignatureType,
				"ipAddress": creation.IpAddress},
		}, &s.Identity, decision.Role, tx); err != nil {
			return err
		}

		signed = *contract
		signed.Status = toStatus
		if s.Identity.ID == contract.PartyAId {
			signed.SignedByAAt = now
		} else {
			signed.SignedByBAt = now
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	detail := ContractDetail{Contract: signed, Signatures: []ContractSignature{signature}}
	if err := db.Where(&ContractClause{ContractID: id}).Order("ordinal ASC").
		Find(&detail.Clauses).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// nextStatusAfterSigning computes the status the contract reaches once the
// given party's signature lands: active when the other party already signed,
// otherwise pending on the other party.
func nextStatusAfterSigning(contract *Contract, signer types.ID) string {
	if signer == contract.PartyAId {
		if !contract.SignedByBAt.IsZero() {
			return StatusActive
		}
		return StatusPendingSignatureB
	}
	if !contract.SignedByAAt.IsZero() {
		return StatusActive
	}
	return StatusPendingSignatureA
}
