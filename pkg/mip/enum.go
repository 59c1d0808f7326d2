// Package mip 提供混合整数规划的模型容器与求解器适配
package mip

import (
	"context"
	"fmt"
	"time"
)

// 浮点比较容差
const feasTol = 1e-6

// EnumSolver 进程内精确求解器
// 对0/1变量做深度优先枚举，松弛型连续变量按约束取最小可行值。
// 仅适用于小规模模型（测试、演示、冒烟检查），生产规模请使用 CBCSolver。
type EnumSolver struct {
	MaxBinaries int // 允许枚举的最大0/1变量数
}

// NewEnumSolver 创建枚举求解器
func NewEnumSolver() *EnumSolver {
	return &EnumSolver{MaxBinaries: 24}
}

// Name 返回求解器名称
func (s *EnumSolver) Name() string {
	return "EnumSolver"
}

// Solve 求解模型
func (s *EnumSolver) Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	start := time.Now()

	if n := m.NumBinaries(); n > s.MaxBinaries {
		return nil, fmt.Errorf("枚举求解器仅支持不超过 %d 个0/1变量的模型（当前 %d 个）", s.MaxBinaries, n)
	}

	deadline := time.Time{}
	if opts.TimeLimit > 0 {
		deadline = start.Add(opts.TimeLimit)
	}

	e := &enumeration{
		model:    m,
		deadline: deadline,
		ctx:      ctx,
	}
	e.prepare()
	e.search(0)

	sol := &Solution{Duration: time.Since(start)}
	switch {
	case e.stopped && e.best == nil:
		sol.Status = StatusTimedOut
	case e.stopped:
		sol.Status = StatusTimedOut
		sol.Objective = e.bestObj
		sol.Values = e.best
	case e.best == nil:
		sol.Status = StatusInfeasible
	default:
		sol.Status = StatusOptimal
		sol.Objective = e.bestObj
		sol.Values = e.best
	}
	return sol, nil
}

// enumeration 一次枚举搜索的内部状态
type enumeration struct {
	model    *Model
	ctx      context.Context
	deadline time.Time

	binaries []int // 0/1变量的变量ID，按枚举顺序
	varOrder []int // 变量ID → 枚举层级（连续变量为 -1）

	// closedAt[k] 为在第k层之后即可完整检查的纯0/1约束
	closedAt [][]int

	values  []float64
	best    []float64
	bestObj float64
	nodes   int
	stopped bool
}

// prepare 预处理变量顺序与约束分层
func (e *enumeration) prepare() {
	m := e.model
	e.values = make([]float64, m.NumVars())
	e.varOrder = make([]int, m.NumVars())
	for i := range e.varOrder {
		e.varOrder[i] = -1
	}
	for _, v := range m.Vars() {
		if v.Kind == Binary {
			e.varOrder[v.ID] = len(e.binaries)
			e.binaries = append(e.binaries, v.ID)
		} else {
			e.values[v.ID] = v.Lb
		}
	}

	e.closedAt = make([][]int, len(e.binaries)+1)
	for ci := range m.Constraints() {
		c := &m.Constraints()[ci]
		level := 0
		pure := true
		for _, t := range c.Expr {
			if lv := e.varOrder[t.Var]; lv >= 0 {
				if lv+1 > level {
					level = lv + 1
				}
			} else {
				pure = false
			}
		}
		if pure {
			e.closedAt[level] = append(e.closedAt[level], ci)
		}
	}
}

// search 深度优先枚举第 k 层及以后的0/1变量
func (e *enumeration) search(k int) {
	if e.stopped {
		return
	}
	e.nodes++
	if e.nodes%1024 == 0 {
		if e.ctx.Err() != nil || (!e.deadline.IsZero() && time.Now().After(e.deadline)) {
			e.stopped = true
			return
		}
	}

	// 检查本层封闭的纯0/1约束
	for _, ci := range e.closedAt[k] {
		if !e.model.Constraints()[ci].Satisfied(e.values, feasTol) {
			return
		}
	}

	if k == len(e.binaries) {
		e.leaf()
		return
	}

	varID := e.binaries[k]
	for _, v := range []float64{0, 1} {
		e.values[varID] = v
		e.search(k + 1)
		if e.stopped {
			e.values[varID] = 0
			return
		}
	}
	e.values[varID] = 0
}

// leaf 0/1变量全部确定后补全连续变量并评估
func (e *enumeration) leaf() {
	m := e.model

	// 连续变量先落到下界
	for _, v := range m.Vars() {
		if v.Kind == Continuous {
			e.values[v.ID] = v.Lb
		}
	}

	// 松弛型连续变量：在仅含单个连续变量的 >= 约束中取最小可行值
	for ci := range m.Constraints() {
		c := &m.Constraints()[ci]
		if c.Sense != GE {
			continue
		}
		contVar, contCoef, count := -1, 0.0, 0
		rest := 0.0
		for _, t := range c.Expr {
			if e.varOrder[t.Var] >= 0 {
				rest += t.Coef * e.values[t.Var]
			} else {
				contVar, contCoef = t.Var, t.Coef
				count++
			}
		}
		if count != 1 || contCoef <= 0 {
			continue
		}
		need := (c.RHS - rest) / contCoef
		if need > e.values[contVar] {
			ub := m.Vars()[contVar].Ub
			if need > ub+feasTol {
				return // 超出上界，不可行
			}
			e.values[contVar] = need
		}
	}

	// 全量校验
	for ci := range m.Constraints() {
		if !m.Constraints()[ci].Satisfied(e.values, feasTol) {
			return
		}
	}

	obj := m.Objective().Eval(e.values)
	if e.best == nil || obj < e.bestObj-1e-12 {
		e.bestObj = obj
		e.best = append([]float64(nil), e.values...)
	}
}
