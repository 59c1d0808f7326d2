package planner

import (
	"fmt"
	"math"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/mip"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// 变量键全部使用切片下标，字符串ID只在命名和提取时出现
type assignKey struct {
	Emp int
	Day int
	Tpl int
}

type allocKey struct {
	Emp    int
	Day    int
	Bucket int
	SG     int
}

type slackKey struct {
	Day    int
	Bucket int
	SG     int
}

// PlanModel 构建完成的规划模型
// 除MIP模型外还保留变量索引与预计算结果，供提取器回读
type PlanModel struct {
	Mip     *mip.Model
	TI      *TimeIndex
	Demand  *Demand
	Weights *Weights
	Input   *model.Input
	Spans   []*CoverageSpan // 与 Input.ShiftTemplates 同序

	assignVars map[assignKey]int
	allocVars  map[allocKey]int
	slackVars  map[slackKey]int
	warnings   []model.Warning
}

// Warnings 返回构建阶段收集的告警
func (pm *PlanModel) Warnings() []model.Warning {
	return pm.warnings
}

// BuildModel 把规划输入装配为MIP模型
// 变量三类：班次指派 s（0/1）、时段分配 z（0/1）、缺员松弛 u（连续非负）；
// 约束：每人每天至多一个班次、周工时上下界、分配不超过在岗、
// 覆盖（分配+缺员≥需求）、不过量分配（分配≤需求）；
// 目标：最小化加权缺员之和
func BuildModel(in *model.Input, ti *TimeIndex) (*PlanModel, error) {
	demand, err := AggregateDemand(in, ti)
	if err != nil {
		return nil, err
	}
	weights, err := ResolveWeights(in.PriorityRules, ti)
	if err != nil {
		return nil, err
	}
	bpd := ti.BucketsPerDay()
	spans, err := ComputeAllCoverage(in.ShiftTemplates, ti.BucketMinutes(), bpd)
	if err != nil {
		return nil, err
	}
	elig := ComputeEligibility(in.EmploymentGroups, in.ShiftTemplates, ti.BucketMinutes())

	pm := &PlanModel{
		Mip:        mip.NewModel("shiftopt"),
		TI:         ti,
		Demand:     demand,
		Weights:    weights,
		Input:      in,
		Spans:      spans,
		assignVars: make(map[assignKey]int),
		allocVars:  make(map[allocKey]int),
		slackVars:  make(map[slackKey]int),
	}
	pm.warnings = append(pm.warnings, elig.Warnings()...)

	sgIndex := make(map[string]int, len(in.SkillGroups))
	for i, sg := range in.SkillGroups {
		sgIndex[sg.ID] = i
	}

	// 班次指派变量，只为匹配工时的 (雇佣组, 模板) 组合创建
	for e := range in.Employees {
		emp := &in.Employees[e]
		group := in.EmploymentGroupByID(emp.EmploymentGroupID)
		if group == nil {
			return nil, errors.InvalidInput("employees",
				fmt.Sprintf("员工 %s 引用了不存在的用工组 %s", emp.ID, emp.EmploymentGroupID))
		}
		for t := range in.ShiftTemplates {
			if !elig.Allowed(group.ID, in.ShiftTemplates[t].ID) {
				continue
			}
			for d := 0; d < ti.Days(); d++ {
				name := fmt.Sprintf("s_%s_d%d_%s", emp.ID, d, in.ShiftTemplates[t].ID)
				pm.assignVars[assignKey{Emp: e, Day: d, Tpl: t}] = pm.Mip.AddBinary(name)
			}
		}
	}

	// 在岗表达式：work[e][d][b] = Σ 覆盖该时段的班次指派变量
	// 从指派变量按覆盖集正向展开，平移出规划范围的时段丢弃
	work := make([][][]mip.Expr, len(in.Employees))
	for e := range work {
		work[e] = make([][]mip.Expr, ti.Days())
		for d := range work[e] {
			work[e][d] = make([]mip.Expr, bpd)
		}
	}
	for e := range in.Employees {
		for d := 0; d < ti.Days(); d++ {
			for t := range in.ShiftTemplates {
				varID, ok := pm.assignVars[assignKey{Emp: e, Day: d, Tpl: t}]
				if !ok {
					continue
				}
				for _, slot := range spans[t].Slots() {
					day := d + slot.DayOffset
					if day >= ti.Days() {
						continue
					}
					work[e][day][slot.Bucket] = work[e][day][slot.Bucket].Add(varID, 1)
				}
			}
		}
	}

	// 约束1：每人每天至多一个班次
	for e := range in.Employees {
		for d := 0; d < ti.Days(); d++ {
			var expr mip.Expr
			for t := range in.ShiftTemplates {
				if varID, ok := pm.assignVars[assignKey{Emp: e, Day: d, Tpl: t}]; ok {
					expr = expr.Add(varID, 1)
				}
			}
			pm.Mip.AddConstraint(fmt.Sprintf("one_shift_%s_d%d", in.Employees[e].ID, d),
				expr, mip.LE, 1)
		}
	}

	// 约束2：以起始日对齐的7天块内周工时上下界
	// 无任何指派变量的员工跳过（对应无可用模板告警），不让空下界把整个模型判为不可行
	for e := range in.Employees {
		emp := &in.Employees[e]
		group := in.EmploymentGroupByID(emp.EmploymentGroupID)
		for _, w := range ti.Weeks() {
			var expr mip.Expr
			for d := w * 7; d < (w+1)*7 && d < ti.Days(); d++ {
				for t := range in.ShiftTemplates {
					if varID, ok := pm.assignVars[assignKey{Emp: e, Day: d, Tpl: t}]; ok {
						expr = expr.Add(varID, in.ShiftTemplates[t].WorkedHours(ti.BucketMinutes()))
					}
				}
			}
			if len(expr) == 0 {
				continue
			}
			pm.Mip.AddConstraint(fmt.Sprintf("min_week_hours_%s_w%d", emp.ID, w),
				expr, mip.GE, group.HoursPerWeek.Min)
			pm.Mip.AddConstraint(fmt.Sprintf("max_week_hours_%s_w%d", emp.ID, w),
				expr, mip.LE, group.HoursPerWeek.Max)
		}
	}

	// 时段分配变量，只为员工具备的技能组创建
	for e := range in.Employees {
		emp := &in.Employees[e]
		for _, sgID := range emp.SkillGroupIDs {
			sg, ok := sgIndex[sgID]
			if !ok {
				pm.warnings = append(pm.warnings, model.Warning{
					Code:    string(errors.CodeInvalidInput),
					Message: fmt.Sprintf("员工 %s 引用了未声明的技能组 %s，已忽略", emp.ID, sgID),
				})
				continue
			}
			for d := 0; d < ti.Days(); d++ {
				for b := 0; b < bpd; b++ {
					name := fmt.Sprintf("z_%s_d%d_b%d_%s", emp.ID, d, b, sgID)
					pm.allocVars[allocKey{Emp: e, Day: d, Bucket: b, SG: sg}] = pm.Mip.AddBinary(name)
				}
			}
		}
	}

	// 缺员松弛变量，覆盖全部 (时段, 技能组)
	for sg := range in.SkillGroups {
		sgID := in.SkillGroups[sg].ID
		for d := 0; d < ti.Days(); d++ {
			for b := 0; b < bpd; b++ {
				name := fmt.Sprintf("u_d%d_b%d_%s", d, b, sgID)
				pm.slackVars[slackKey{Day: d, Bucket: b, SG: sg}] = pm.Mip.AddContinuous(name, 0, math.Inf(1))
			}
		}
	}

	// 约束3：每人每时段的技能组分配总量不超过在岗
	for e := range in.Employees {
		emp := &in.Employees[e]
		for d := 0; d < ti.Days(); d++ {
			for b := 0; b < bpd; b++ {
				var expr mip.Expr
				for sg := range in.SkillGroups {
					if varID, ok := pm.allocVars[allocKey{Emp: e, Day: d, Bucket: b, SG: sg}]; ok {
						expr = expr.Add(varID, 1)
					}
				}
				if len(expr) == 0 {
					continue
				}
				for _, term := range work[e][d][b] {
					expr = expr.Add(term.Var, -1)
				}
				pm.Mip.AddConstraint(fmt.Sprintf("alloc_le_work_%s_d%d_b%d", emp.ID, d, b),
					expr, mip.LE, 0)
			}
		}
	}

	// 约束4/5：覆盖与不过量分配
	for sg := range in.SkillGroups {
		sgID := in.SkillGroups[sg].ID
		for d := 0; d < ti.Days(); d++ {
			for b := 0; b < bpd; b++ {
				required := demand.RequiredAt(d, b, sgID)
				var allocSum mip.Expr
				for e := range in.Employees {
					if varID, ok := pm.allocVars[allocKey{Emp: e, Day: d, Bucket: b, SG: sg}]; ok {
						allocSum = allocSum.Add(varID, 1)
					}
				}
				slackID := pm.slackVars[slackKey{Day: d, Bucket: b, SG: sg}]
				cov := allocSum.Add(slackID, 1)
				pm.Mip.AddConstraint(fmt.Sprintf("cov_d%d_b%d_%s", d, b, sgID),
					cov, mip.GE, float64(required))
				if len(allocSum) > 0 {
					pm.Mip.AddConstraint(fmt.Sprintf("no_over_alloc_d%d_b%d_%s", d, b, sgID),
						allocSum, mip.LE, float64(required))
				}
			}
		}
	}

	// 目标：Σ 权重(时段, 业务流) × 缺员
	var obj mip.Expr
	for sg := range in.SkillGroups {
		stream := demand.StreamOf[in.SkillGroups[sg].ID]
		for d := 0; d < ti.Days(); d++ {
			for b := 0; b < bpd; b++ {
				slackID := pm.slackVars[slackKey{Day: d, Bucket: b, SG: sg}]
				obj = obj.Add(slackID, weights.At(d, b, stream))
			}
		}
	}
	pm.Mip.SetMinimize(obj)

	return pm, nil
}
