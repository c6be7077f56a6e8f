package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/azulretail/pos-backend/api/middleware"
	categorysvc "github.com/azulretail/pos-backend/internal/categories"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
	"github.com/azulretail/pos-backend/pkg/types"
)

type stubCategoryService struct {
	createErr     error
	deleteErr     error
	deleteActorID int64
	deletedID     int64
}

func (s *stubCategoryService) Create(ctx context.Context, actorID int64, input categorysvc.CreateCategoryInput, meta types.RequestMeta) (*categorysvc.CategoryDTO, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &categorysvc.CategoryDTO{ID: 3, Name: input.Name, IsActive: true}, nil
}

func (s *stubCategoryService) List(ctx context.Context, includeInactive bool) ([]categorysvc.CategoryDTO, error) {
	return []categorysvc.CategoryDTO{}, nil
}

func (s *stubCategoryService) GetByID(ctx context.Context, id int64) (*categorysvc.CategoryDTO, error) {
	return &categorysvc.CategoryDTO{ID: id}, nil
}

func (s *stubCategoryService) Update(ctx context.Context, actorID, id int64, input categorysvc.UpdateCategoryInput, meta types.RequestMeta) (*categorysvc.CategoryDTO, error) {
	return &categorysvc.CategoryDTO{ID: id}, nil
}

func (s *stubCategoryService) Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error {
	s.deleteActorID = actorID
	s.deletedID = id
	return s.deleteErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestDeleteCategory(t *testing.T) {
	logg := testLogger()

	makeRequest := func(stub *stubCategoryService, id string) *httptest.ResponseRecorder {
		ctx := middleware.WithUserID(context.Background(), int64(7))
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+id, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		DeleteCategory(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success forwards the acting user", func(t *testing.T) {
		stub := &stubCategoryService{}
		rec := makeRequest(stub, "3")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.deleteActorID != 7 || stub.deletedID != 3 {
			t.Fatalf("expected actor 7 deleting id 3, got %d / %d", stub.deleteActorID, stub.deletedID)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := makeRequest(&stubCategoryService{}, "not-a-number")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("missing category", func(t *testing.T) {
		stub := &stubCategoryService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "category not found")}
		rec := makeRequest(stub, "3")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCreateCategoryDuplicateNameMapsToBadRequest(t *testing.T) {
	stub := &stubCategoryService{createErr: pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")}

	ctx := middleware.WithUserID(context.Background(), int64(7))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":"Kitchen"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	CreateCategory(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate name to map to 400, got %d", rec.Code)
	}
}
