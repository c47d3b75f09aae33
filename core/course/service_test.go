package course_test

import (
	"context"
	"testing"

	"github.com/elimucd/maendeleo/core/course"
	inmemdb "github.com/elimucd/maendeleo/storage/database/inmem"
	"github.com/elimucd/maendeleo/tests"
)

func setup(t *testing.T) (course.ServiceInterface, course.Repository) {
	t.Helper()
	db := testutil.OpenDB(t)
	repo := inmemdb.NewContentRepository(db)
	return course.NewService(repo), repo
}

func Test_service_moduleSequence(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	m1 := testutil.CreateModule(t, repo, course.Module{Name: "M1", Order: 1, IsActive: true})
	m2 := testutil.CreateModule(t, repo, course.Module{Name: "M2", Order: 2, IsActive: true})
	m3 := testutil.CreateModule(t, repo, course.Module{Name: "M3", Order: 3, IsActive: true})
	inactive := testutil.CreateModule(t, repo, course.Module{Name: "Draft", Order: 4})

	mods, err := svc.ActiveModules(ctx)
	if err != nil {
		t.Fatalf("ActiveModules() failed: %v", err)
	}
	if len(mods) != 3 {
		t.Fatalf("ActiveModules() = %d modules; want 3", len(mods))
	}
	for i, want := range []string{m1.ID, m2.ID, m3.ID} {
		if mods[i].ID != want {
			t.Errorf("ActiveModules()[%d] = %s; want %s", i, mods[i].Name, want)
		}
	}

	if _, err = svc.PreviousModule(ctx, m1); err != course.ErrNotFound {
		t.Errorf("PreviousModule(first) error = %v; want ErrNotFound", err)
	}
	prev, err := svc.PreviousModule(ctx, m3)
	if err != nil {
		t.Fatalf("PreviousModule() failed: %v", err)
	}
	if prev.ID != m2.ID {
		t.Errorf("PreviousModule(M3) = %s; want M2", prev.Name)
	}

	next, err := svc.NextModule(ctx, m1)
	if err != nil {
		t.Fatalf("NextModule() failed: %v", err)
	}
	if next.ID != m2.ID {
		t.Errorf("NextModule(M1) = %s; want M2", next.Name)
	}
	if _, err = svc.NextModule(ctx, m3); err != course.ErrNotFound {
		t.Errorf("NextModule(last) error = %v; want ErrNotFound", err)
	}

	// inactive modules do not take part in sequencing
	if _, err = svc.NextModule(ctx, m3); err != course.ErrNotFound {
		t.Errorf("NextModule(M3) error = %v; inactive %q must be skipped", err, inactive.Name)
	}

	// deactivating M2 stitches M1 and M3 together
	m2.IsActive = false
	if _, err = repo.CreateModule(ctx, m2); err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	next, err = svc.NextModule(ctx, m1)
	if err != nil {
		t.Fatalf("NextModule() failed: %v", err)
	}
	if next.ID != m3.ID {
		t.Errorf("NextModule(M1) = %s; want M3 with M2 inactive", next.Name)
	}
}

func Test_service_LessonEmbedding(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	mod := testutil.CreateModule(t, repo, course.Module{Name: "M1", Order: 1, IsActive: true})
	embedded := testutil.CreateQuiz(t, repo, course.Quiz{
		Name: "checkpoint", Questions: []course.Question{testutil.TwoOptionQuestion("pick")},
	})
	standalone := testutil.CreateQuiz(t, repo, course.Quiz{
		ModuleID: mod.ID, Name: "final", Questions: []course.Question{testutil.TwoOptionQuestion("pick")},
	})
	lsn := testutil.CreateLesson(t, repo, course.Lesson{
		ModuleID: mod.ID, Name: "L1", Order: 1,
		Quizzes: []course.EmbeddedQuiz{{QuizID: embedded.ID, Position: 0, DisplayAfter: true}},
	})

	host, err := svc.LessonEmbedding(ctx, embedded.ID)
	if err != nil {
		t.Fatalf("LessonEmbedding() failed: %v", err)
	}
	if host.ID != lsn.ID {
		t.Errorf("LessonEmbedding() = %s; want %s", host.ID, lsn.ID)
	}

	if _, err = svc.LessonEmbedding(ctx, standalone.ID); err != course.ErrNotFound {
		t.Errorf("LessonEmbedding(standalone) error = %v; want ErrNotFound", err)
	}
}

func Test_CorrectOption(t *testing.T) {
	q := testutil.TwoOptionQuestion("pick")
	if got := q.CorrectOption(); got != 0 {
		t.Errorf("CorrectOption() = %d; want 0", got)
	}

	none := course.Question{Text: "broken", Options: []course.Option{{Text: "a"}, {Text: "b"}}}
	if got := none.CorrectOption(); got != -1 {
		t.Errorf("CorrectOption() = %d; want -1", got)
	}
}
