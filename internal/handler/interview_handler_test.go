package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/prepman/internal/interview"
	"github.com/hitoshi/prepman/internal/middleware"
	"github.com/hitoshi/prepman/internal/model"
)

// --- モック定義 ---

type mockInterviewService struct {
	ownedFn        func(ctx context.Context, userID string) ([]model.Interview, error)
	discoverableFn func(ctx context.Context, userID string, limit int) ([]model.Interview, error)
	dashboardFn    func(ctx context.Context, userID string) interview.DashboardResult
}

var _ InterviewServiceInterface = (*mockInterviewService)(nil)

func (m *mockInterviewService) Owned(ctx context.Context, userID string) ([]model.Interview, error) {
	if m.ownedFn != nil {
		return m.ownedFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockInterviewService) Discoverable(ctx context.Context, userID string, limit int) ([]model.Interview, error) {
	if m.discoverableFn != nil {
		return m.discoverableFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockInterviewService) Dashboard(ctx context.Context, userID string) interview.DashboardResult {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, userID)
	}
	return interview.DashboardResult{}
}

func sampleInterview(id, userID string) model.Interview {
	return model.Interview{
		ID:        id,
		UserID:    userID,
		Role:      "Backend Engineer",
		Type:      "technical",
		Level:     "senior",
		Techstack: []string{"go", "postgres"},
		Questions: []string{"What is a goroutine?"},
		Finalized: true,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.ContextWithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}

// --- テスト ---

func TestInterviewHandler_ListMine_ReturnsOwnedInterviews(t *testing.T) {
	svc := &mockInterviewService{
		ownedFn: func(ctx context.Context, userID string) ([]model.Interview, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []model.Interview{
				sampleInterview("iv-2", "user-1"),
				sampleInterview("iv-1", "user-1"),
			}, nil
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.ListMine(w, authedRequest(http.MethodGet, "/api/interviews/mine", "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp interviewListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Interviews) != 2 {
		t.Fatalf("len(interviews) = %d, want 2", len(resp.Interviews))
	}
	if resp.Interviews[0].ID != "iv-2" {
		t.Errorf("first interview = %q, want %q (ordering preserved)", resp.Interviews[0].ID, "iv-2")
	}
	if resp.Interviews[0].CreatedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("created_at = %q, want RFC3339 format", resp.Interviews[0].CreatedAt)
	}
}

func TestInterviewHandler_ListMine_EmptyIsArrayNotNull(t *testing.T) {
	svc := &mockInterviewService{
		ownedFn: func(ctx context.Context, userID string) ([]model.Interview, error) {
			return []model.Interview{}, nil
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.ListMine(w, authedRequest(http.MethodGet, "/api/interviews/mine", "user-1"))

	body := w.Body.String()
	if !json.Valid([]byte(body)) {
		t.Fatalf("invalid JSON: %s", body)
	}
	// 0件でも"interviews": nullではなく[]になること
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if string(raw["interviews"]) == "null" {
		t.Error("interviews should be [], not null")
	}
}

func TestInterviewHandler_ListMine_NoUserID_Returns401(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/interviews/mine", nil)
	w := httptest.NewRecorder()

	h.ListMine(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestInterviewHandler_ListMine_ServiceError_Returns500(t *testing.T) {
	svc := &mockInterviewService{
		ownedFn: func(ctx context.Context, userID string) ([]model.Interview, error) {
			return nil, errors.New("query failed")
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.ListMine(w, authedRequest(http.MethodGet, "/api/interviews/mine", "user-1"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestInterviewHandler_ListDiscover_PassesLimit(t *testing.T) {
	var gotLimit int
	svc := &mockInterviewService{
		discoverableFn: func(ctx context.Context, userID string, limit int) ([]model.Interview, error) {
			gotLimit = limit
			return []model.Interview{sampleInterview("iv-other", "user-2")}, nil
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.ListDiscover(w, authedRequest(http.MethodGet, "/api/interviews/discover?limit=5", "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}
}

func TestInterviewHandler_ListDiscover_NoLimitParam_PassesZero(t *testing.T) {
	// limit未指定時は0を渡し、既定値の適用はサービス層に委ねる
	gotLimit := -1
	svc := &mockInterviewService{
		discoverableFn: func(ctx context.Context, userID string, limit int) ([]model.Interview, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.ListDiscover(w, authedRequest(http.MethodGet, "/api/interviews/discover", "user-1"))

	if gotLimit != 0 {
		t.Errorf("limit = %d, want 0", gotLimit)
	}
}

func TestInterviewHandler_ListDiscover_InvalidLimit_Returns400(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	cases := []string{"abc", "-1", "0", "1.5"}
	for _, raw := range cases {
		t.Run("limit="+raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ListDiscover(w, authedRequest(http.MethodGet, "/api/interviews/discover?limit="+raw, "user-1"))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestInterviewHandler_ListDiscover_NoUserID_Returns401(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/interviews/discover", nil)
	w := httptest.NewRecorder()

	h.ListDiscover(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestInterviewHandler_Dashboard_ReturnsBothLists(t *testing.T) {
	svc := &mockInterviewService{
		dashboardFn: func(ctx context.Context, userID string) interview.DashboardResult {
			return interview.DashboardResult{
				Owned:          []model.Interview{sampleInterview("iv-mine", "user-1")},
				OwnedOK:        true,
				Discoverable:   []model.Interview{sampleInterview("iv-other", "user-2")},
				DiscoverableOK: true,
			}
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.Dashboard(w, authedRequest(http.MethodGet, "/api/dashboard", "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp dashboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Owned) != 1 || resp.Owned[0].ID != "iv-mine" {
		t.Errorf("unexpected owned list: %+v", resp.Owned)
	}
	if len(resp.Discoverable) != 1 || resp.Discoverable[0].ID != "iv-other" {
		t.Errorf("unexpected discoverable list: %+v", resp.Discoverable)
	}
}

func TestInterviewHandler_Dashboard_FailedLegBecomesEmptyList(t *testing.T) {
	// 片側のクエリ失敗はエラーではなく空リストとして返り、もう片側は生きる
	svc := &mockInterviewService{
		dashboardFn: func(ctx context.Context, userID string) interview.DashboardResult {
			return interview.DashboardResult{
				OwnedOK:        false,
				Discoverable:   []model.Interview{sampleInterview("iv-other", "user-2")},
				DiscoverableOK: true,
			}
		},
	}
	h := NewInterviewHandler(svc)

	w := httptest.NewRecorder()
	h.Dashboard(w, authedRequest(http.MethodGet, "/api/dashboard", "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if string(raw["owned"]) != "[]" {
		t.Errorf("owned = %s, want []", raw["owned"])
	}

	var resp dashboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Discoverable) != 1 {
		t.Errorf("discoverable should survive owned failure, got %+v", resp.Discoverable)
	}
}

func TestInterviewHandler_Dashboard_NoUserID_Returns401(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()

	h.Dashboard(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
