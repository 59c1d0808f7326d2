package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shiftopt/shiftopt/internal/repository"
	"github.com/shiftopt/shiftopt/pkg/model"
)

func seededRunRepo() (*fakeRunRepo, *repository.PlanRun) {
	run := &repository.PlanRun{
		ID:             uuid.New(),
		Status:         "Optimal",
		StartDate:      "2026-01-01",
		Days:           1,
		BucketMinutes:  720,
		Employees:      2,
		SkillGroups:    1,
		SolverName:     "enum",
		AssignedShifts: 2,
		Solution: &model.Solution{
			Status:         "Optimal",
			ObjectiveValue: 0,
			Assignments: []model.Assignment{
				{EmployeeID: "emp_a", DayIndex: 0, EmploymentGroupID: "full_time", ShiftTemplateID: "t_early"},
				{EmployeeID: "emp_b", DayIndex: 0, EmploymentGroupID: "full_time", ShiftTemplateID: "t_early"},
			},
			Coverage: []model.CoverageEntry{
				{DayIndex: 0, BucketIndex: 0, SkillGroupID: "sg_voice",
					Direction: "inbound", Channel: "voice", Required: 2, Allocated: 2, Weight: 1},
			},
		},
	}
	return &fakeRunRepo{created: []*repository.PlanRun{run}}, run
}

func TestRunsHandler_List(t *testing.T) {
	repo, _ := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	var resp ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 1 || len(resp.Runs) != 1 {
		t.Fatalf("total = %d, runs = %d, expected 1/1", resp.Total, len(resp.Runs))
	}
	// 列表不应携带结果体
	if resp.Runs[0].Solution != nil {
		t.Error("列表响应不应包含完整结果体")
	}
}

func TestRunsHandler_Detail(t *testing.T) {
	repo, run := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+run.ID.String(), nil)
	w := httptest.NewRecorder()
	h.Detail(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	var got repository.PlanRun
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("ID = %s, expected %s", got.ID, run.ID)
	}
	if got.Solution == nil {
		t.Error("详情响应应包含完整结果体")
	}
}

func TestRunsHandler_DetailNotFound(t *testing.T) {
	repo, _ := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	h.Detail(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("状态码 = %d, expected 404", w.Code)
	}
}

func TestRunsHandler_DetailInvalidID(t *testing.T) {
	repo, _ := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.Detail(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, expected 400", w.Code)
	}
}

func TestRunsHandler_Delete(t *testing.T) {
	repo, run := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/runs/"+run.ID.String(), nil)
	w := httptest.NewRecorder()
	h.Detail(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	if len(repo.created) != 0 {
		t.Errorf("删除后仓储应为空, got %d", len(repo.created))
	}
}

func TestRunsHandler_Latest(t *testing.T) {
	repo, run := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	w := httptest.NewRecorder()
	h.Detail(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	var got repository.PlanRun
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("ID = %s, expected %s", got.ID, run.ID)
	}
}

func TestRunsHandler_KPIs(t *testing.T) {
	repo, run := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/report/kpis?run_id="+run.ID.String(), nil)
	w := httptest.NewRecorder()
	h.KPIs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RunID string `json:"run_id"`
		KPIs  struct {
			TotalRequired  float64 `json:"total_required"`
			TotalAllocated float64 `json:"total_allocated"`
			FillRate       float64 `json:"fill_rate"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.RunID != run.ID.String() {
		t.Errorf("run_id = %s, expected %s", resp.RunID, run.ID)
	}
	if resp.KPIs.TotalRequired != 2 || resp.KPIs.TotalAllocated != 2 {
		t.Errorf("KPI汇总不符: required=%.0f allocated=%.0f",
			resp.KPIs.TotalRequired, resp.KPIs.TotalAllocated)
	}
	if resp.KPIs.FillRate != 100 {
		t.Errorf("FillRate = %.2f, expected 100", resp.KPIs.FillRate)
	}
}

func TestRunsHandler_KPIsLatestByDefault(t *testing.T) {
	repo, run := seededRunRepo()
	h := NewRunsHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report/kpis", nil)
	w := httptest.NewRecorder()
	h.KPIs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, expected 200, body: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp["run_id"] != run.ID.String() {
		t.Errorf("run_id = %v, expected %s", resp["run_id"], run.ID)
	}
}

func TestRunsHandler_NoRepository(t *testing.T) {
	h := NewRunsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("状态码 = %d, expected 500", w.Code)
	}
}
