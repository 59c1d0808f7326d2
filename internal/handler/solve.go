// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shiftopt/shiftopt/internal/config"
	"github.com/shiftopt/shiftopt/internal/metrics"
	"github.com/shiftopt/shiftopt/internal/repository"
	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/logger"
	"github.com/shiftopt/shiftopt/pkg/model"
	"github.com/shiftopt/shiftopt/pkg/planner"
	"github.com/shiftopt/shiftopt/pkg/stats"
	"github.com/shiftopt/shiftopt/pkg/validator"
)

// SolveHandler 规划求解处理器
type SolveHandler struct {
	planner  *planner.Planner
	runs     repository.RunRepositoryInterface
	cfg      *config.SolverConfig
	verifier *validator.SolutionVerifier
	analyzer *stats.KPIAnalyzer
}

// NewSolveHandler 创建求解处理器
// runs 为空时跳过归档，只做同步求解
func NewSolveHandler(p *planner.Planner, runs repository.RunRepositoryInterface, cfg *config.SolverConfig) *SolveHandler {
	return &SolveHandler{
		planner:  p,
		runs:     runs,
		cfg:      cfg,
		verifier: validator.NewSolutionVerifier(),
		analyzer: stats.NewKPIAnalyzer(),
	}
}

// SolveResponse 求解响应
type SolveResponse struct {
	RunID      string                `json:"run_id"`
	Duration   string                `json:"duration"`
	Result     *model.Solution       `json:"result"`
	KPIs       *stats.KPIReport      `json:"kpis"`
	Violations []validator.Violation `json:"violations,omitempty"`
}

// Solve 执行一次规划求解
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var in model.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := validateSolveRequest(&in); err != nil {
		respondError(w, err)
		return
	}

	// 请求未指定时套用默认求解选项
	if in.Solver.TimeLimitSeconds == nil && h.cfg != nil && h.cfg.DefaultTimeLimit > 0 {
		secs := h.cfg.DefaultTimeLimit.Seconds()
		in.Solver.TimeLimitSeconds = &secs
	}
	if in.Solver.MIPGap == nil && h.cfg != nil && h.cfg.DefaultMIPGap > 0 {
		gap := h.cfg.DefaultMIPGap
		in.Solver.MIPGap = &gap
	}

	runID := uuid.New()
	start := time.Now()

	metrics.ActiveSolveStarted()
	defer metrics.ActiveSolveFinished()

	// 求解上下文带硬超时兜底，在软限制之外留出清理余量
	solveCtx := r.Context()
	if in.Solver.TimeLimitSeconds != nil && *in.Solver.TimeLimitSeconds > 0 {
		grace := time.Duration(*in.Solver.TimeLimitSeconds*float64(time.Second)) + 30*time.Second
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(solveCtx, grace)
		defer cancel()
	}

	sol, err := h.planner.RunWithID(solveCtx, runID.String(), &in)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordSolve(h.planner.SolverName(), string(errors.GetCode(err)), duration)
		respondError(w, toAppError(err))
		return
	}
	metrics.RecordSolve(h.planner.SolverName(), sol.Status, duration)
	metrics.SetModelSize(sol.Model.Variables, sol.Model.Constraints)

	// 结果自检与指标
	ti, tiErr := planner.NewTimeIndex(in.Time)
	var violations []validator.Violation
	if tiErr == nil {
		violations = h.verifier.VerifyAll(&in, ti, sol)
	}
	kpis := h.analyzer.Analyze(sol)
	metrics.SetSolutionQuality(kpis.TotalUnderstaff, kpis.FillRate)

	// 归档失败只记录日志，不影响同步响应
	if h.runs != nil {
		run := &repository.PlanRun{
			ID:              runID,
			Status:          sol.Status,
			StartDate:       in.Time.StartDate,
			Days:            in.Time.Days,
			BucketMinutes:   in.Time.BucketMinutes,
			Employees:       len(in.Employees),
			SkillGroups:     len(in.SkillGroups),
			SolverName:      h.planner.SolverName(),
			ObjectiveValue:  sol.ObjectiveValue,
			TotalUnderstaff: sol.TotalUnderstaff,
			AssignedShifts:  len(sol.Assignments),
			WarningCount:    len(sol.Warnings),
			DurationMs:      duration.Milliseconds(),
			Solution:        sol,
		}
		if err := h.runs.Create(r.Context(), run); err != nil {
			logger.WithError(err).Str("run_id", runID.String()).Msg("归档规划运行失败")
		}
	}

	respondJSON(w, http.StatusOK, SolveResponse{
		RunID:      runID.String(),
		Duration:   duration.String(),
		Result:     sol,
		KPIs:       kpis,
		Violations: violations,
	})
}

// validateSolveRequest 校验请求的结构完整性
func validateSolveRequest(in *model.Input) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if in.Time.StartDate == "" {
		ve.Add("time.start_date", "起始日期不能为空")
	}
	if in.Time.Days <= 0 {
		ve.Add("time.days", "规划天数必须为正数")
	}
	if in.Time.BucketMinutes <= 0 {
		ve.Add("time.bucket_minutes", "时段长度必须为正数")
	}
	if len(in.SkillGroups) == 0 {
		ve.Add("skill_groups", "技能组不能为空")
	}
	if len(in.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	if len(in.EmploymentGroups) == 0 {
		ve.Add("employment_groups", "用工组不能为空")
	}
	if len(in.ShiftTemplates) == 0 {
		ve.Add("shift_templates", "班次模板不能为空")
	}
	for i, e := range in.Employees {
		if e.ID == "" {
			ve.Add(fmt.Sprintf("employees[%d].id", i), "员工ID不能为空")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// toAppError 统一转换为应用错误
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "规划执行失败")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	body := map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	}
	// 校验类错误带逐字段明细
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	json.NewEncoder(w).Encode(body)
}
