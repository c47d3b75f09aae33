package progression

import (
	"context"

	"github.com/google/uuid"

	"github.com/elimucd/maendeleo/core"
)

// RequestModuleApproval creates a pending ApprovalRequest for (student,
// module). Allowed only when no request exists yet or the latest one was
// rejected; a pending request fails with ErrDuplicateRequest and a granted
// one with ErrAlreadyApproved. Past decided records are never touched:
// each cycle appends a new row.
func (svc *service) RequestModuleApproval(ctx context.Context, studentID, moduleID string) (ApprovalRequest, error) {
	mod, err := svc.contentSvc.GetModule(ctx, moduleID)
	if err != nil {
		return ApprovalRequest{}, err
	}

	latest, err := svc.repo.GetLatestApprovalRequest(ctx, studentID, mod.ID)
	switch err {
	case nil:
		switch latest.Status {
		case ApprovalApproved:
			return ApprovalRequest{}, ErrAlreadyApproved
		case ApprovalPending:
			return ApprovalRequest{}, ErrDuplicateRequest
		}
	case ErrNotFound:
		// first request for this module
	default:
		return ApprovalRequest{}, err
	}

	req := ApprovalRequest{
		ID:          uuid.New().String(),
		UserID:      studentID,
		ModuleID:    mod.ID,
		Status:      ApprovalPending,
		RequestedAt: NowFunc().UTC(),
	}
	// the repository serializes the duplicate-pending check with the
	// insert (partial unique index or equivalent), closing the race
	// between two concurrent requests
	return svc.repo.CreateApprovalRequest(ctx, req)
}

// DecideModuleApproval applies a staff decision to a pending request.
// The decision must be approve or reject, any non-pending request fails
// with ErrInvalidTransition, and a rejection requires a student-facing
// comment. Emits approval.approved or approval.rejected to the requesting
// student.
func (svc *service) DecideModuleApproval(ctx context.Context, staffID, requestID string, dec ApprovalDecision) (ApprovalRequest, error) {
	switch dec.Decision {
	case DecisionApprove, DecisionReject:
	default:
		return ApprovalRequest{}, core.NewValidationError(nil, core.FieldError{
			Field: "decision", Error: unknownDecisionText,
		})
	}
	if dec.Decision == DecisionReject && dec.Comment == "" {
		return ApprovalRequest{}, core.NewValidationError(nil, core.FieldError{
			Field: "comment", Error: rejectCommentText,
		})
	}

	req, err := svc.repo.GetApprovalRequestByID(ctx, requestID)
	if err != nil {
		return ApprovalRequest{}, err
	}
	if !req.IsPending() {
		return ApprovalRequest{}, ErrInvalidTransition
	}

	req.Status = ApprovalApproved
	eventType := core.EventApprovalApproved
	if dec.Decision == DecisionReject {
		req.Status = ApprovalRejected
		eventType = core.EventApprovalRejected
	}
	req.Comment = dec.Comment
	req.DecidedAt = NowFunc().UTC()
	req.DecidedBy = staffID

	req, err = svc.repo.UpdateApprovalRequest(ctx, req)
	if err != nil {
		return ApprovalRequest{}, err
	}

	svc.notify(core.NewEvent(eventType, req.UserID, map[string]interface{}{
		"module_id": req.ModuleID,
		"comment":   req.Comment,
	}))
	return req, nil
}

// ApprovalHistory returns every approval request a student has made for a
// module, oldest first. Decided records are immutable, so the history is a
// complete audit trail of the request/decide cycles.
func (svc *service) ApprovalHistory(ctx context.Context, studentID, moduleID string) ([]ApprovalRequest, error) {
	return svc.repo.QueryApprovalRequests(ctx, studentID, moduleID)
}
