package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"academictoken/internal/errs"
	cacheinfra "academictoken/internal/infrastructure/cache"
	contentinfra "academictoken/internal/infrastructure/content"
	"academictoken/internal/infrastructure/events"
	"academictoken/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "academictoken/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "academictoken/internal/infrastructure/persistence/sqlite/uow"
	"academictoken/internal/usecase/academic"
)

func newTestService(t *testing.T) *academic.Service {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(dir, "engine.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	store, err := contentinfra.Open(filepath.Join(dir, "content.bolt"), time.Second)
	if err != nil {
		t.Fatalf("open content store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return academic.NewService(
		sqliterepo.NewAcademicRepository(db),
		sqliterepo.NewEngineStateRepository(db),
		sqliteuow.NewUnitOfWork(db),
		cacheinfra.NewSQLiteCache(db),
		store,
		events.NopSink{},
		academic.Options{},
	)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouterServesSubjects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, id := range []string{"uni-a:1", "uni-a:2", "uni-a:3"} {
		if _, err := svc.RegisterSubject(ctx, academic.RegisterSubjectInput{
			ID: id, Title: "Subject " + id, Institution: "uni-a", Credits: 4, Level: "undergraduate",
		}); err != nil {
			t.Fatalf("RegisterSubject(%s) error = %v", id, err)
		}
	}
	h := NewRouter(svc)

	rec := get(t, h, "/api/v1/subjects/uni-a:2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var subject struct {
		ID      string
		Credits int
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &subject); err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	if subject.ID != "uni-a:2" || subject.Credits != 4 {
		t.Fatalf("subject = %#v", subject)
	}

	rec = get(t, h, "/api/v1/institutions/uni-a/subjects?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Items      []struct{ ID string }
		NextCursor string
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor != "uni-a:2" {
		t.Fatalf("page = %#v", page)
	}
}

func TestRouterMapsErrors(t *testing.T) {
	h := NewRouter(newTestService(t))

	cases := []struct {
		name   string
		target string
		status int
		kind   errs.Kind
	}{
		{name: "missing subject", target: "/api/v1/subjects/nope", status: http.StatusNotFound, kind: errs.KindNotFound},
		{name: "bad limit", target: "/api/v1/curricula?limit=-3", status: http.StatusBadRequest, kind: errs.KindInvalidInput},
		{name: "no locator", target: "/api/v1/content", status: http.StatusBadRequest, kind: errs.KindInvalidInput},
		{name: "uninitialized engine", target: "/api/v1/engine", status: http.StatusNotFound, kind: errs.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.status, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", body.Kind, tc.kind)
			}
		})
	}
}

func TestRouterStatsAndHealth(t *testing.T) {
	h := NewRouter(newTestService(t))

	if rec := get(t, h, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec := get(t, h, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stats struct{ Initialized bool }
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Initialized {
		t.Fatalf("stats reported initialized engine")
	}
}
