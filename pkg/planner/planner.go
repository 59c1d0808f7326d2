package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/logger"
	"github.com/shiftopt/shiftopt/pkg/mip"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// Planner 规划流水线：构建模型、调用求解器、提取结果
type Planner struct {
	solver mip.Solver
	log    *logger.PlannerLogger
}

// New 创建规划器
func New(solver mip.Solver) *Planner {
	return &Planner{
		solver: solver,
		log:    logger.NewPlannerLogger(),
	}
}

// SolverName 返回底层求解器名称
func (p *Planner) SolverName() string {
	return p.solver.Name()
}

// Run 执行一次完整的规划运行
// Infeasible/Unbounded/Error 状态返回错误；TimedOut 带可行解时照常提取结果
func (p *Planner) Run(ctx context.Context, in *model.Input) (*model.Solution, error) {
	runID := uuid.New().String()
	return p.RunWithID(ctx, runID, in)
}

// RunWithID 以外部指定的运行ID执行规划，供服务端把ID回写给调用方
func (p *Planner) RunWithID(ctx context.Context, runID string, in *model.Input) (*model.Solution, error) {
	ti, err := NewTimeIndex(in.Time)
	if err != nil {
		return nil, err
	}
	p.log.StartRun(runID, len(in.Employees), ti.Days(), len(in.SkillGroups))

	buildStart := time.Now()
	pm, err := BuildModel(in, ti)
	if err != nil {
		return nil, err
	}
	for _, w := range pm.Warnings() {
		p.log.Warning(runID, w.Code, w.Message)
	}
	p.log.ModelBuilt(runID, pm.Mip.NumVars(), pm.Mip.NumConstraints(), time.Since(buildStart))

	opts := mip.Options{}
	if in.Solver.TimeLimitSeconds != nil && *in.Solver.TimeLimitSeconds > 0 {
		opts.TimeLimit = time.Duration(*in.Solver.TimeLimitSeconds * float64(time.Second))
	}
	if in.Solver.MIPGap != nil && *in.Solver.MIPGap > 0 {
		opts.RelativeGap = *in.Solver.MIPGap
	}

	solveStart := time.Now()
	sol, err := p.solver.Solve(ctx, pm.Mip, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSolverError, "求解器执行失败")
	}

	switch sol.Status {
	case mip.StatusInfeasible:
		return nil, errors.New(errors.CodeSolverInfeasible, "模型不可行：约束之间存在冲突")
	case mip.StatusUnbounded:
		return nil, errors.New(errors.CodeSolverUnbounded, "模型无界")
	case mip.StatusError:
		return nil, errors.New(errors.CodeSolverError, "求解器返回错误状态")
	}
	if !sol.Status.Usable() || sol.Values == nil {
		return nil, errors.New(errors.CodeTimeout, "时间限制内未找到任何可行解")
	}

	out := pm.Extract(sol)
	p.log.SolveComplete(runID, out.Status, out.ObjectiveValue, out.TotalUnderstaff, time.Since(solveStart))
	return out, nil
}
