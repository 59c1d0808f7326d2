// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiftopt/shiftopt/pkg/model"
)

// PlanRun 一次规划运行的归档记录
type PlanRun struct {
	ID              uuid.UUID       `json:"id"`
	Status          string          `json:"status"` // Optimal/Feasible/TimedOut
	StartDate       string          `json:"start_date"`
	Days            int             `json:"days"`
	BucketMinutes   int             `json:"bucket_minutes"`
	Employees       int             `json:"employees"`
	SkillGroups     int             `json:"skill_groups"`
	SolverName      string          `json:"solver_name"`
	ObjectiveValue  float64         `json:"objective_value"`
	TotalUnderstaff float64         `json:"total_understaff"`
	AssignedShifts  int             `json:"assigned_shifts"`
	WarningCount    int             `json:"warning_count"`
	DurationMs      int64           `json:"duration_ms"`
	Solution        *model.Solution `json:"solution,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RunRepositoryInterface 规划运行仓储接口
type RunRepositoryInterface interface {
	Create(ctx context.Context, run *PlanRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*PlanRun, error)
	List(ctx context.Context, filter ListFilter) ([]*PlanRun, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Latest(ctx context.Context) (*PlanRun, error)
}

// RunRepository 规划运行仓储实现
type RunRepository struct {
	db DB
}

// NewRunRepository 创建规划运行仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create 归档一次规划运行，完整结果以JSONB存储
func (r *RunRepository) Create(ctx context.Context, run *PlanRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()

	solutionJSON, err := json.Marshal(run.Solution)
	if err != nil {
		return fmt.Errorf("序列化规划结果失败: %w", err)
	}

	query := `
		INSERT INTO plan_runs (
			id, status, start_date, days, bucket_minutes,
			employees, skill_groups, solver_name,
			objective_value, total_understaff, assigned_shifts,
			warning_count, duration_ms, solution, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.StartDate, run.Days, run.BucketMinutes,
		run.Employees, run.SkillGroups, run.SolverName,
		run.ObjectiveValue, run.TotalUnderstaff, run.AssignedShifts,
		run.WarningCount, run.DurationMs, solutionJSON, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("归档规划运行失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取规划运行
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*PlanRun, error) {
	query := selectRunColumns + ` FROM plan_runs WHERE id = $1`
	return r.scanRun(r.db.QueryRowContext(ctx, query, id))
}

// List 分页查询规划运行
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*PlanRun, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.StartDate)
		argIdx++
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, filter.EndDate)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM plan_runs` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计规划运行失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf("%s FROM plan_runs%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		selectRunColumns, where, quoteColumn(orderBy), orderDir, argIdx, argIdx+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询规划运行失败: %w", err)
	}
	defer rows.Close()

	var runs []*PlanRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// Delete 删除规划运行
func (r *RunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plan_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除规划运行失败: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Latest 获取最近一次规划运行
func (r *RunRepository) Latest(ctx context.Context) (*PlanRun, error) {
	query := selectRunColumns + ` FROM plan_runs ORDER BY created_at DESC LIMIT 1`
	return r.scanRun(r.db.QueryRowContext(ctx, query))
}

const selectRunColumns = `
	SELECT id, status, start_date, days, bucket_minutes,
		employees, skill_groups, solver_name,
		objective_value, total_understaff, assigned_shifts,
		warning_count, duration_ms, solution, created_at`

// scanRun 从行扫描规划运行记录
func (r *RunRepository) scanRun(row Scanner) (*PlanRun, error) {
	var run PlanRun
	var solutionJSON []byte

	err := row.Scan(
		&run.ID, &run.Status, &run.StartDate, &run.Days, &run.BucketMinutes,
		&run.Employees, &run.SkillGroups, &run.SolverName,
		&run.ObjectiveValue, &run.TotalUnderstaff, &run.AssignedShifts,
		&run.WarningCount, &run.DurationMs, &solutionJSON, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(solutionJSON) > 0 {
		var sol model.Solution
		if err := json.Unmarshal(solutionJSON, &sol); err != nil {
			return nil, fmt.Errorf("反序列化规划结果失败: %w", err)
		}
		run.Solution = &sol
	}
	return &run, nil
}

// quoteColumn 只允许白名单内的排序列，防注入
func quoteColumn(col string) string {
	switch col {
	case "created_at", "status", "objective_value", "total_understaff", "duration_ms":
		return col
	default:
		return "created_at"
	}
}
