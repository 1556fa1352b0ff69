package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByIDScopesToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, user_id, job_title").
		WithArgs("app-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "job_title", "job_description", "platform", "application_url", "status", "created_at",
		}).AddRow("app-1", "user-1", "Backend Engineer", "Go services", "linkedin", "", "applied", created))

	repo := &PGRepo{DB: db}
	app, err := repo.GetByID(context.Background(), "user-1", "app-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if app.JobTitle != "Backend Engineer" || app.JobDescription != "Go services" {
		t.Fatalf("unexpected application %+v", app)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, user_id, job_title").
		WithArgs("app-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "user-2", "app-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoHidesOtherUsersApplications(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(JobApplication{ID: "app-1", UserID: "user-1", JobTitle: "SRE"})

	if _, err := repo.GetByID(context.Background(), "user-2", "app-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", "app-1"); err != nil {
		t.Fatalf("expected owner lookup to succeed, got %v", err)
	}
}
