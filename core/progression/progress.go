package progression

import (
	"context"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/course"
)

// CompleteLesson marks a lesson completed for a student. It requires the
// owning module to be accessible, is idempotent on repeat calls, and emits
// a module.unlocked event when this completion unlocks the next module.
func (svc *service) CompleteLesson(ctx context.Context, studentID, lessonID string) (Progress, error) {
	lsn, err := svc.contentSvc.GetLesson(ctx, lessonID)
	if err != nil {
		return Progress{}, err
	}
	mod, err := svc.contentSvc.GetModule(ctx, lsn.ModuleID)
	if err != nil {
		return Progress{}, err
	}

	access, err := svc.ResolveModuleAccess(ctx, studentID, mod)
	if err != nil {
		return Progress{}, err
	}
	if !access.Accessible {
		return Progress{}, ErrModuleLocked
	}

	// repeat completions are no-ops and must not re-emit unlock events
	if p, err := svc.repo.GetProgress(ctx, studentID, lessonID); err == nil {
		return p, nil
	} else if err != ErrNotFound {
		return Progress{}, err
	}

	p := Progress{
		UserID:      studentID,
		LessonID:    lessonID,
		IsCompleted: true,
		CompletedAt: NowFunc().UTC(),
	}
	p, err = svc.repo.UpsertProgress(ctx, p)
	if err != nil {
		return Progress{}, err
	}

	if err := svc.checkModuleUnlocked(ctx, studentID, mod); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// checkModuleUnlocked re-evaluates the module that follows mod after a
// write to mod's completion facts, and emits module.unlocked if the
// sequencing & project gates now pass.
func (svc *service) checkModuleUnlocked(ctx context.Context, studentID string, mod course.Module) error {
	ratio, err := svc.CompletionRatio(ctx, studentID, mod.ID)
	if err != nil {
		return err
	}
	if ratio < 1.0 {
		return nil
	}

	next, err := svc.contentSvc.NextModule(ctx, mod)
	if err != nil {
		if err == course.ErrNotFound {
			return nil
		}
		return err
	}
	access, err := svc.ResolveModuleAccess(ctx, studentID, next)
	if err != nil {
		return err
	}
	if access.Accessible {
		svc.notify(core.NewEvent(core.EventModuleUnlocked, studentID, map[string]interface{}{
			"module_id":   next.ID,
			"module_name": next.Name,
		}))
	}
	return nil
}

// CompletionRatio returns completed/total lessons of a module, in [0,1].
// A module with no lessons is vacuously complete (ratio 1.0).
func (svc *service) CompletionRatio(ctx context.Context, studentID, moduleID string) (float64, error) {
	lessons, err := svc.contentSvc.LessonsByModule(ctx, moduleID)
	if err != nil {
		return 0, err
	}
	if len(lessons) == 0 {
		return 1.0, nil
	}

	done, err := svc.repo.CountCompletedLessons(ctx, studentID, lessonIDs(lessons))
	if err != nil {
		return 0, err
	}
	return float64(done) / float64(len(lessons)), nil
}

// OverallCompletionRatio returns completed/total lessons across all active
// modules, in [0,1]. No lessons at all yields 0.
func (svc *service) OverallCompletionRatio(ctx context.Context, studentID string) (float64, error) {
	mods, err := svc.contentSvc.ActiveModules(ctx)
	if err != nil {
		return 0, err
	}

	var all []string
	for _, mod := range mods {
		lessons, err := svc.contentSvc.LessonsByModule(ctx, mod.ID)
		if err != nil {
			return 0, err
		}
		all = append(all, lessonIDs(lessons)...)
	}
	if len(all) == 0 {
		return 0, nil
	}

	done, err := svc.repo.CountCompletedLessons(ctx, studentID, all)
	if err != nil {
		return 0, err
	}
	return float64(done) / float64(len(all)), nil
}

func lessonIDs(lessons []course.Lesson) []string {
	ids := make([]string, 0, len(lessons))
	for _, lsn := range lessons {
		ids = append(ids, lsn.ID)
	}
	return ids
}
