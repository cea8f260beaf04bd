package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/prepman/internal/interview"
	"github.com/hitoshi/prepman/internal/middleware"
	"github.com/hitoshi/prepman/internal/model"
)

// InterviewServiceInterface は面接ハンドラーが必要とするサービスインターフェース。
type InterviewServiceInterface interface {
	// Owned は指定ユーザーが所有する面接を作成日時降順で全件返す。
	Owned(ctx context.Context, userID string) ([]model.Interview, error)
	// Discoverable はfinalized済みかつ指定ユーザー以外の面接を作成日時降順で返す。
	Discoverable(ctx context.Context, userID string, limit int) ([]model.Interview, error)
	// Dashboard はownedとdiscoverableを並行取得する。
	Dashboard(ctx context.Context, userID string) interview.DashboardResult
}

// InterviewHandler は面接クエリのHTTPハンドラー。
type InterviewHandler struct {
	service InterviewServiceInterface
}

// NewInterviewHandler はInterviewHandlerを生成する。
func NewInterviewHandler(service InterviewServiceInterface) *InterviewHandler {
	return &InterviewHandler{
		service: service,
	}
}

// interviewResponse は面接情報のAPIレスポンス。
type interviewResponse struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Role      string   `json:"role"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Techstack []string `json:"techstack"`
	Questions []string `json:"questions"`
	Finalized bool     `json:"finalized"`
	CreatedAt string   `json:"created_at"`
}

// interviewListResponse は面接一覧のAPIレスポンス。
type interviewListResponse struct {
	Interviews []interviewResponse `json:"interviews"`
}

// dashboardResponse はダッシュボード画面1枚分のAPIレスポンス。
// 片側のクエリが失敗した場合、そのリストは空として返る（画面は空状態で描画する）。
type dashboardResponse struct {
	Owned        []interviewResponse `json:"owned"`
	Discoverable []interviewResponse `json:"discoverable"`
}

// ListMine は自分が所有する面接の一覧を返す。
// GET /api/interviews/mine
func (h *InterviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	interviews, err := h.service.Owned(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interviewListResponse{
		Interviews: toInterviewResponses(interviews),
	})
}

// ListDiscover は他ユーザーの公開面接フィードを返す。
// GET /api/interviews/discover?limit=20
func (h *InterviewHandler) ListDiscover(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limitは正の整数で指定してください"))
			return
		}
		limit = parsed
	}

	interviews, err := h.service.Discoverable(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interviewListResponse{
		Interviews: toInterviewResponses(interviews),
	})
}

// Dashboard はownedとdiscoverableを1リクエストでまとめて返す。
// 片側のクエリ失敗は空リストに畳み込み、もう片側の結果には影響しない。
// GET /api/dashboard
func (h *InterviewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	result := h.service.Dashboard(r.Context(), userID)

	resp := dashboardResponse{
		Owned:        []interviewResponse{},
		Discoverable: []interviewResponse{},
	}
	if result.OwnedOK {
		resp.Owned = toInterviewResponses(result.Owned)
	}
	if result.DiscoverableOK {
		resp.Discoverable = toInterviewResponses(result.Discoverable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toInterviewResponses はmodel.InterviewのスライスをAPIレスポンスに変換する。
// 0件でもJSONでnullではなく[]として返す。
func toInterviewResponses(interviews []model.Interview) []interviewResponse {
	responses := make([]interviewResponse, 0, len(interviews))
	for _, iv := range interviews {
		responses = append(responses, interviewResponse{
			ID:        iv.ID,
			UserID:    iv.UserID,
			Role:      iv.Role,
			Type:      iv.Type,
			Level:     iv.Level,
			Techstack: iv.Techstack,
			Questions: iv.Questions,
			Finalized: iv.Finalized,
			CreatedAt: iv.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}
