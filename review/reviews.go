package review

import (
	"strings"

	"signoff/audit"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/contentstore"
	"signoff/gate"
	"signoff/idgen"
	"signoff/persistence"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	submissionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SubmitContentFunc    = SubmitContent
	ApproveContentFunc   = ApproveContent
	RejectContentFunc    = RejectContent
	QuerySubmissionsFunc = QuerySubmissions
)

func SubmitContent(creation *SubmissionCreation, s *session.Session) (*ContentSubmission, error) {
	decision, err := gate.AuthorizeFunc(s, "content.submit",
		authority.Permissions{authority.ContentSubmitForReview}, gate.All)
	if err != nil {
		return nil, err
	}
	if !contentstore.IsValidContentType(creation.ContentType) {
		return nil, bizerror.ErrUnknownContentType
	}

	pending := true
	submission := ContentSubmission{
		ID:          idgen.NextID(submissionIdWorker),
		ContentType: creation.ContentType,
		ContentID:   creation.ContentID,
		SubmittedBy: s.Identity.ID,
		Status:      StatusPending,
		PendingFlag: &pending,
		SubmitTime:  types.CurrentTimestamp(),
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			if persistence.IsDuplicateEntryError(err) {
				return bizerror.ErrDuplicateSubmission
			}
			return err
		}
		_, err := audit.Record(audit.Recording{
			Action: "content.submit", EntityType: "content_submission", EntityID: submission.ID,
			NewValue: audit.Properties{"status": StatusPending},
			Metadata: audit.Properties{"contentType": string(submission.ContentType),
				"contentId": submission.ContentID.String()},
		}, &s.Identity, decision.Role, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return &submission, nil
}

func ApproveContent(id types.ID, note *ReviewNote, s *session.Session) (*ContentSubmission, error) {
	decision, err := gate.AuthorizeFunc(s, "content.approve",
		authority.Permissions{authority.ContentApprove}, gate.All)
	if err != nil {
		return nil, err
	}

	var submission ContentSubmission
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		reviewed, err := reviewSubmission(tx, id, StatusApproved, note.Notes, s, decision)
		if err != nil {
			return err
		}
		// flip the publication flag of the content item, same transaction
		if err := contentstore.MarkPublishedDispatchFunc(reviewed.ContentType, reviewed.ContentID,
			reviewed.ReviewTime, tx); err != nil {
			return err
		}
		submission = *reviewed
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &submission, nil
}

func RejectContent(id types.ID, note *RejectionNote, s *session.Session) (*ContentSubmission, error) {
	// a rejection must be explainable; fail before any state read or audit write
	if strings.TrimSpace(note.Notes) == "" {
		return nil, bizerror.ErrInvalidArguments
	}

	decision, err := gate.AuthorizeFunc(s, "content.reject",
		authority.Permissions{authority.ContentApprove}, gate.All)
	if err != nil {
		return nil, err
	}

	var submission ContentSubmission
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		reviewed, err := reviewSubmission(tx, id, StatusRejected, note.Notes, s, decision)
		if err != nil {
			return err
		}
		submission = *reviewed
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &submission, nil
}

// reviewSubmission performs the single allowed mutation of a submission:
// pending -> approved|rejected, with reviewer attribution and an audit entry.
func reviewSubmission(tx *gorm.DB, id types.ID, toStatus string, notes string,
	s *session.Session, decision *gate.Decision) (*ContentSubmission, error) {

	submission := ContentSubmission{}
	if err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where(&ContentSubmission{ID: id}).First(&submission).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	if !ReviewMachine.CanTransit(submission.Status, toStatus) {
		return nil, bizerror.ErrAlreadyReviewed
	}

	now := types.CurrentTimestamp()
	if err := tx.Model(&ContentSubmission{}).Where(&ContentSubmission{ID: id}).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"pending_flag": nil,
			"reviewed_by":  s.Identity.ID,
			"review_notes": notes,
			"review_time":  now,
		}).Error; err != nil {
		return nil, err
	}

	_, err := audit.Record(audit.Recording{
		Action: "content." + toStatus, EntityType: "content_submission", EntityID: submission.ID,
		OldValue: audit.Properties{"status": submission.Status},
		NewValue: audit.Properties{"status": toStatus, "reviewNotes": notes},
		Metadata: audit.Properties{"contentType": string(submission.ContentType),
			"contentId": submission.ContentID.String()},
	}, &s.Identity, decision.Role, tx)
	if err != nil {
		return nil, err
	}

	submission.Status = toStatus
	submission.PendingFlag = nil
	submission.ReviewedBy = s.Identity.ID
	submission.ReviewNotes = notes
	submission.ReviewTime = now
	return &submission, nil
}

func QuerySubmissions(query *SubmissionQuery, s *session.Session) ([]ContentSubmission, error) {
	if _, err := gate.AuthorizeFunc(s, "content.query_submissions",
		authority.Permissions{authority.ContentViewSubmissions}, gate.All); err != nil {
		return nil, err
	}

	var submissions []ContentSubmission
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&ContentSubmission{})
	if query.Status != "" {
		q = q.Where(&ContentSubmission{Status: query.Status})
	}
	if query.ContentType != "" {
		q = q.Where(&ContentSubmission{ContentType: query.ContentType})
	}
	if err := q.Order("submit_time DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
