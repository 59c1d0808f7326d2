package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shiftopt/shiftopt/internal/repository"
	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/stats"
)

// RunsHandler 规划运行查询处理器
type RunsHandler struct {
	runs     repository.RunRepositoryInterface
	analyzer *stats.KPIAnalyzer
}

// NewRunsHandler 创建运行查询处理器
func NewRunsHandler(runs repository.RunRepositoryInterface) *RunsHandler {
	return &RunsHandler{
		runs:     runs,
		analyzer: stats.NewKPIAnalyzer(),
	}
}

// ListResponse 运行列表响应
type ListResponse struct {
	Total int                   `json:"total"`
	Runs  []*repository.PlanRun `json:"runs"`
}

// List 分页查询历史运行
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.runs == nil {
		respondError(w, errors.New(errors.CodeInternal, "未启用运行归档"))
		return
	}

	filter := repository.DefaultListFilter()
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		filter = filter.WithStatus(s)
	}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			filter = filter.WithLimit(n)
		}
	}
	if s := q.Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			filter = filter.WithOffset(n)
		}
	}

	runs, total, err := h.runs.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询规划运行失败"))
		return
	}
	// 列表响应不携带完整结果体
	for _, run := range runs {
		run.Solution = nil
	}
	respondJSON(w, http.StatusOK, ListResponse{Total: total, Runs: runs})
}

// Detail 查询或删除单次运行，路径为 /api/v1/runs/{id}
func (h *RunsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, errors.New(errors.CodeInternal, "未启用运行归档"))
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if idStr == "" || idStr == "latest" {
		h.latest(w, r)
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的运行ID格式"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := h.runs.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, notFoundOrDBError(err))
			return
		}
		respondJSON(w, http.StatusOK, run)
	case http.MethodDelete:
		if err := h.runs.Delete(r.Context(), id); err != nil {
			respondError(w, notFoundOrDBError(err))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id.String()})
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/DELETE方法"))
	}
}

// latest 返回最近一次运行
func (h *RunsHandler) latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	run, err := h.runs.Latest(r.Context())
	if err != nil {
		respondError(w, notFoundOrDBError(err))
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// KPIs 返回某次运行的指标报告，run_id 为空时取最近一次
func (h *RunsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.runs == nil {
		respondError(w, errors.New(errors.CodeInternal, "未启用运行归档"))
		return
	}

	var run *repository.PlanRun
	var err error
	if idStr := r.URL.Query().Get("run_id"); idStr != "" {
		id, perr := uuid.Parse(idStr)
		if perr != nil {
			respondError(w, errors.Wrap(perr, errors.CodeInvalidInput, "无效的运行ID格式"))
			return
		}
		run, err = h.runs.GetByID(r.Context(), id)
	} else {
		run, err = h.runs.Latest(r.Context())
	}
	if err != nil {
		respondError(w, notFoundOrDBError(err))
		return
	}
	if run.Solution == nil {
		respondError(w, errors.New(errors.CodeNotFound, "该次运行未保存结果体"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": run.ID.String(),
		"status": run.Status,
		"kpis":   h.analyzer.Analyze(run.Solution),
	})
}

// notFoundOrDBError 区分无记录与数据库故障
func notFoundOrDBError(err error) *errors.AppError {
	if err == sql.ErrNoRows {
		return errors.New(errors.CodeNotFound, "规划运行不存在")
	}
	return errors.Wrap(err, errors.CodeDatabaseError, "查询规划运行失败")
}
