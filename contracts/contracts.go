package contracts

import (
	"errors"

	"signoff/account"
	"signoff/audit"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/gate"
	"signoff/idgen"
	"signoff/persistence"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	contractIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateContractFunc    = CreateContract
	DetailContractFunc    = DetailContract
	QueryContractsFunc    = QueryContracts
	UpdateContractFunc    = UpdateContract
	DeleteContractFunc    = DeleteContract
	TerminateContractFunc = TerminateContract
)

func CreateContract(creation *ContractCreation, s *session.Session) (*ContractDetail, error) {
	decision, err := gate.AuthorizeFunc(s, "contracts.create",
		authority.Permissions{authority.ContractsCreate}, gate.All)
	if err != nil {
		return nil, err
	}
	if creation.PartyAId == creation.PartyBId {
		return nil, bizerror.ErrInvalidArguments
	}

	// snapshot the parties' roles as held right now; these fields are
	// historical once written
	partyARole, err := resolvePartyRole(creation.PartyAId)
	if err != nil {
		return nil, err
	}
	partyBRole, err := resolvePartyRole(creation.PartyBId)
	if err != nil {
		return nil, err
	}

	detail := ContractDetail{
		Contract: Contract{
			ID:           idgen.NextID(contractIdWorker),
			Title:        creation.Title,
			ContractType: creation.ContractType,

			PartyAId: creation.PartyAId, PartyARole: partyARole,
			PartyBId: creation.PartyBId, PartyBRole: partyBRole,

			FinancialTerms: creation.FinancialTerms,
			StartDate:      creation.StartDate,
			EndDate:        creation.EndDate,
			AutoRenew:      creation.AutoRenew,

			Status:     StatusDraft,
			CreatedBy:  s.Identity.ID,
			CreateTime: types.CurrentTimestamp(),
		},
		Signatures: []ContractSignature{},
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&detail.Contract).Error; err != nil {
			return err
		}
		for i, c := range creation.Clauses {
			clause := ContractClause{ID: idgen.NextID(contractIdWorker), ContractID: detail.ID,
				ClauseType: c.ClauseType, Ordinal: i + 1, Text: c.Text}
			if err := tx.Create(&clause).Error; err != nil {
				return err
			}
			detail.Clauses = append(detail.Clauses, clause)
		}

		_, err := audit.Record(audit.Recording{
			Action: "contracts.create", EntityType: "contract", EntityID: detail.ID,
			NewValue: audit.Properties{"status": StatusDraft, "title": detail.Title},
			Metadata: audit.Properties{"partyAId": detail.PartyAId.String(),
				"partyBId": detail.PartyBId.String()},
		}, &s.Identity, decision.Role, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return &detail, nil
}

func DetailContract(id types.ID, s *session.Session) (*ContractDetail, error) {
	if s == nil || s.Identity.ID.IsZero() {
		return nil, bizerror.ErrUnauthenticated
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	detail := ContractDetail{}
	if err := db.Where(&Contract{ID: id}).First(&detail.Contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	// a party may always read its own contract; everyone else passes the gate
	if !detail.IsParty(s.Identity.ID) {
		if _, err := gate.AuthorizeFunc(s, "contracts.detail",
			authority.Permissions{authority.ContractsView}, gate.All); err != nil {
			return nil, err
		}
	}

	if err := db.Where(&ContractClause{ContractID: id}).Order("ordinal ASC").
		Find(&detail.Clauses).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&ContractSignature{ContractID: id}).Order("sign_time ASC").
		Find(&detail.Signatures).Error; err != nil {
		return nil, err
	}

	detail.Status = detail.EffectiveStatus(types.CurrentTimestamp())
	return &detail, nil
}

func QueryContracts(query *ContractQuery, s *session.Session) ([]Contract, error) {
	if _, err := gate.AuthorizeFunc(s, "contracts.query",
		authority.Permissions{authority.ContractsView}, gate.All); err != nil {
		return nil, err
	}

	var records []Contract
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&Contract{})
	if query.Mine {
		q = q.Where("party_a_id = ? OR party_b_id = ?", s.Identity.ID, s.Identity.ID)
	}
	if query.Status != "" {
		q = q.Where(&Contract{Status: query.Status})
	}
	if err := q.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	for i := range records {
		records[i].Status = records[i].EffectiveStatus(now)
	}
	return records, nil
}

// UpdateContract edits a draft. A contract that has collected even one
// signature is immutable through this path.
func UpdateContract(id types.ID, updating *ContractUpdating, s *session.Session) (*Contract, error) {
	decision, err := gate.AuthorizeFunc(s, "contracts.update",
		authority.Permissions{authority.ContractsEdit}, gate.All)
	if err != nil {
		return nil, err
	}

	var updated Contract
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		contract, err := findContractForUpdate(tx, id)
		if err != nil {
			return err
		}
		if contract.Status != StatusDraft {
			return bizerror.ErrImmutableContract
		}

		if err := tx.Model(&Contract{}).Where(&Contract{ID: id}).
			Updates(map[string]interface{}{
				"title":           updating.Title,
				"financial_terms": updating.FinancialTerms,
				"start_date":      updating.StartDate,
				"end_date":        updating.EndDate,
				"auto_renew":      updating.AutoRenew,
			}).Error; err != nil {
			return err
		}

		if _, err := audit.Record(audit.Recording{
			Action: "contracts.update", EntityType: "contract", EntityID: id,
			OldValue: audit.Properties{"title": contract.Title, "financialTerms": contract.FinancialTerms},
			NewValue: audit.Properties{"title": updating.Title, "financialTerms": updating.FinancialTerms},
		}, &s.Identity, decision.Role, tx); err != nil {
			return err
		}

		updated = *contract
		updated.Title = updating.Title
		updated.FinancialTerms = updating.FinancialTerms
		updated.StartDate = updating.StartDate
		updated.EndDate = updating.EndDate
		updated.AutoRenew = updating.AutoRenew
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &updated, nil
}

func DeleteContract(id types.ID, s *session.Session) error {
	decision, err := gate.AuthorizeFunc(s, "contracts.delete",
		authority.Permissions{authority.ContractsDelete}, gate.All)
	if err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		contract, err := findContractForUpdate(tx, id)
		if err != nil {
			return err
		}
		if contract.Status != StatusDraft {
			return bizerror.ErrImmutableContract
		}

		if err := tx.Where(&ContractClause{ContractID: id}).Delete(&ContractClause{}).Error; err != nil {
			return err
		}
		if err := tx.Where(&Contract{ID: id}).Delete(&Contract{}).Error; err != nil {
			return err
		}

		_, err = audit.Record(audit.Recording{
			Action: "contracts.delete", EntityType: "contract", EntityID: id,
			OldValue: audit.Properties{"status": contract.Status, "title": contract.Title},
		}, &s.Identity, decision.Role, tx)
		return err
	})
}

func TerminateContract(id types.ID, req *TerminationRequest, s *session.Session) (*Contract, error) {
	decision, err := gate.AuthorizeFunc(s, "contracts.terminate",
		authority.Permissions{authority.ContractsTerminate}, gate.All)
	if err != nil {
		return nil, err
	}

	var terminated Contract
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		contract, err := findContractForUpdate(tx, id)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		// an already expired contract can not be terminated
		effective := contract.EffectiveStatus(now)
		if !ContractMachine.CanTransit(effective, StatusTerminated) {
			return bizerror.ErrImmutableContract
		}

		if err := tx.Model(&Contract{}).Where(&Contract{ID: id}).
			Updates(map[string]interface{}{
				"status":             StatusTerminated,
				"terminated_at":      now,
				"termination_reason": req.Reason,
			}).Error; err != nil {
			return err
		}

		if _, err := audit.Record(audit.Recording{
			Action: "contracts.terminate", EntityType: "contract", EntityID: id,
			OldValue: audit.Properties{"status": effective},
			NewValue: audit.Properties{"status": StatusTerminated, "reason": req.Reason},
			Severity: audit.SeverityCritical,
		}, &s.Identity, decision.Role, tx); err != nil {
			return err
		}

		terminated = *contract
		terminated.Status = StatusTerminated
		terminated.TerminatedAt = now
		terminated.TerminationReason = req.Reason
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &terminated, nil
}

func findContractForUpdate(tx *gorm.DB, id types.ID) (*Contract, error) {
	contract := Contract{}
	if err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where(&Contract{ID: id}).First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

func resolvePartyRole(uid types.ID) (authority.Role, error) {
	role, err := account.LoadUserRoleFunc(uid)
	if err != nil {
		if errors.Is(err, bizerror.ErrUnauthenticated) {
			// the named party does not exist
			return "", bizerror.ErrInvalidArguments
		}
		return "", err
	}
	return role, nil
}
