package curriculum_test

import (
	"errors"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/platform/database"
)

func TestNewPostgresRepository_NilPool(t *testing.T) {
	if _, err := curriculum.NewPostgresRepository(nil); err == nil {
		t.Error("NewPostgresRepository(nil) should fail")
	}
}

func TestPostgresRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := t.Context()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("quest"),
		tcpostgres.WithUsername("quest"),
		tcpostgres.WithPassword("quest"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo, err := curriculum.NewPostgresRepository(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresRepository() error = %v", err)
	}

	changed, err := repo.PutModule(ctx, quizModule())
	if err != nil || !changed {
		t.Fatalf("PutModule() = %v, %v; want true, nil", changed, err)
	}
	changed, err = repo.PutModule(ctx, quizModule())
	if err != nil || changed {
		t.Errorf("PutModule(unchanged) = %v, %v; want false, nil", changed, err)
	}

	m, err := repo.GetModule(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModule() error = %v", err)
	}
	if m.TotalSections() != 2 || m.Sections[1].Questions[0].CorrectAnswer != 1 {
		t.Errorf("GetModule() = %+v, want stored sections", m)
	}

	list, err := repo.ListModules(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("ListModules() = %d modules, %v; want 1", len(list), err)
	}

	if _, err := repo.GetModule(ctx, "missing"); !errors.Is(err, curriculum.ErrModuleNotFound) {
		t.Errorf("GetModule(missing) error = %v, want ErrModuleNotFound", err)
	}

	bad := quizModule()
	bad.Sections = nil
	if _, err := repo.PutModule(ctx, bad); !errors.Is(err, curriculum.ErrInvalidModule) {
		t.Errorf("PutModule(invalid) error = %v, want ErrInvalidModule", err)
	}
}
