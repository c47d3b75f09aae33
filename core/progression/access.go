package progression

import (
	"context"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

// ResolveModuleAccess decides whether a module accepts progress-affecting
// actions for a student. The decision is never stored: it is recomputed
// from current progress, approval and project-submission facts.
//
// Gates, in order:
//  1. sequencing: all lessons of the immediately preceding active module
//     must be completed (the first active module has no predecessor gate);
//  2. project: if the preceding module requires a project, its submission
//     must be approved, subject to the auto-unlock flag policy;
//  3. approval: an approval-gated module additionally needs an approved
//     ApprovalRequest, regardless of its position in the sequence.
func (svc *service) ResolveModuleAccess(ctx context.Context, studentID string, mod course.Module) (ModuleAccess, error) {
	prev, err := svc.contentSvc.PreviousModule(ctx, mod)
	switch err {
	case nil:
		ratio, err := svc.CompletionRatio(ctx, studentID, prev.ID)
		if err != nil {
			return ModuleAccess{}, err
		}
		if ratio < 1.0 {
			return ModuleAccess{Reason: ReasonPreviousIncomplete}, nil
		}

		if prev.ProjectRequired {
			blocked, err := svc.projectGateBlocks(ctx, studentID, prev, mod)
			if err != nil {
				return ModuleAccess{}, err
			}
			if blocked {
				return ModuleAccess{Reason: ReasonProjectNotApproved}, nil
			}
		}
	case course.ErrNotFound:
		// first active module: no sequencing gate
	default:
		return ModuleAccess{}, err
	}

	if mod.NeedsApproval() {
		req, err := svc.repo.GetLatestApprovalRequest(ctx, studentID, mod.ID)
		if err != nil {
			if err == ErrNotFound {
				return ModuleAccess{Reason: ReasonApprovalMissing}, nil
			}
			return ModuleAccess{}, err
		}
		switch req.Status {
		case ApprovalPending:
			return ModuleAccess{ApprovalStatus: ApprovalPending, Reason: ReasonApprovalPending}, nil
		case ApprovalRejected:
			return ModuleAccess{ApprovalStatus: ApprovalRejected, Reason: ReasonApprovalRejected}, nil
		}
		return ModuleAccess{Accessible: true, ApprovalStatus: ApprovalApproved}, nil
	}

	return ModuleAccess{Accessible: true}, nil
}

// projectGateBlocks evaluates the project gate between prev (the module
// owning the project) and mod (the module being unlocked). The gate is
// advisory unless the auto-unlock flags make it strict: the project-level
// flag governs unlocking the module after its own, the module-level flag
// governs unlocking mod itself; the configured policy combines the two.
func (svc *service) projectGateBlocks(ctx context.Context, studentID string, prev, mod course.Module) (bool, error) {
	prj, err := svc.contentSvc.ProjectByModule(ctx, prev.ID)
	if err != nil {
		if err == course.ErrNotFound {
			// project content deleted: a non-fatal gap, never a lock-out
			return false, nil
		}
		return false, err
	}

	var strict bool
	if svc.conf.Progression.ProjectGatePolicy == core.ProjectGatePolicyAll {
		strict = prj.AutoUnlockNextOnValidation && mod.AutoUnlockOnProjectValidation
	} else {
		strict = prj.AutoUnlockNextOnValidation || mod.AutoUnlockOnProjectValidation
	}
	if !strict {
		return false, nil
	}

	sub, err := svc.repo.GetProjectSubmission(ctx, studentID, prj.ID)
	if err != nil {
		if err == ErrNotFound {
			return true, nil
		}
		return false, err
	}
	return sub.Status != SubmissionApproved, nil
}
