// Package validator 提供排班结果验证功能
package validator

import (
	"fmt"

	"github.com/shiftopt/shiftopt/pkg/model"
	"github.com/shiftopt/shiftopt/pkg/planner"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationMultiShift     ViolationType = "multi_shift"      // 同一天多个班次
	ViolationOffShiftAlloc  ViolationType = "off_shift_alloc"  // 非在岗时段被分配
	ViolationDoubleAlloc    ViolationType = "double_alloc"     // 同一时段分配到多个技能组
	ViolationOverAlloc      ViolationType = "over_alloc"       // 分配超过需求
	ViolationCoverageGap    ViolationType = "coverage_gap"     // 分配+缺员未达需求
	ViolationUnknownRef     ViolationType = "unknown_ref"      // 引用不存在的实体
	ViolationWeeklyHours    ViolationType = "weekly_hours"     // 周工时越界
	ViolationSkillMismatch  ViolationType = "skill_mismatch"   // 员工不具备被分配的技能组
	ViolationAllocMismatch  ViolationType = "alloc_mismatch"   // 分配明细与覆盖表合计不一致
)

// Violation 违规信息
type Violation struct {
	Type       ViolationType `json:"type"`
	EmployeeID string        `json:"employee_id,omitempty"`
	DayIndex   int           `json:"day_index"`
	Message    string        `json:"message"`
}

// 浮点比较容差
const verifyTol = 1e-6

// SolutionVerifier 排班结果验证器
// 独立于模型构建重新推导各项硬性性质，用于回归确认求解结果自洽
type SolutionVerifier struct{}

// NewSolutionVerifier 创建结果验证器
func NewSolutionVerifier() *SolutionVerifier {
	return &SolutionVerifier{}
}

// VerifyAll 对规划结果执行全部检查
func (v *SolutionVerifier) VerifyAll(in *model.Input, ti *planner.TimeIndex, sol *model.Solution) []Violation {
	var violations []Violation
	violations = append(violations, v.verifyOneShiftPerDay(sol)...)
	violations = append(violations, v.verifyAllocations(in, ti, sol)...)
	violations = append(violations, v.verifyCoverage(sol)...)
	violations = append(violations, v.verifyAllocationTotals(sol)...)
	violations = append(violations, v.verifyWeeklyHours(in, ti, sol)...)
	return violations
}

// verifyOneShiftPerDay 每人每天至多一个班次
func (v *SolutionVerifier) verifyOneShiftPerDay(sol *model.Solution) []Violation {
	var violations []Violation
	type empDay struct {
		emp string
		day int
	}
	counts := make(map[empDay]int)
	for _, a := range sol.Assignments {
		counts[empDay{emp: a.EmployeeID, day: a.DayIndex}]++
	}
	for key, n := range counts {
		if n > 1 {
			violations = append(violations, Violation{
				Type:       ViolationMultiShift,
				EmployeeID: key.emp,
				DayIndex:   key.day,
				Message:    fmt.Sprintf("员工 %s 在天 %d 被指派 %d 个班次", key.emp, key.day, n),
			})
		}
	}
	return violations
}

// verifyAllocations 技能分配必须落在在岗时段内，且同一时段只分配一个技能组
func (v *SolutionVerifier) verifyAllocations(in *model.Input, ti *planner.TimeIndex, sol *model.Solution) []Violation {
	var violations []Violation

	tplByID := make(map[string]*model.ShiftTemplate, len(in.ShiftTemplates))
	for i := range in.ShiftTemplates {
		tplByID[in.ShiftTemplates[i].ID] = &in.ShiftTemplates[i]
	}
	empByID := make(map[string]*model.Employee, len(in.Employees))
	for i := range in.Employees {
		empByID[in.Employees[i].ID] = &in.Employees[i]
	}

	// 从指派重建在岗时段集合
	type empSlot struct {
		emp    string
		day    int
		bucket int
	}
	onShift := make(map[empSlot]struct{})
	for _, a := range sol.Assignments {
		tpl, ok := tplByID[a.ShiftTemplateID]
		if !ok {
			violations = append(violations, Violation{
				Type:       ViolationUnknownRef,
				EmployeeID: a.EmployeeID,
				DayIndex:   a.DayIndex,
				Message:    fmt.Sprintf("指派引用了不存在的班次模板 %s", a.ShiftTemplateID),
			})
			continue
		}
		span, err := planner.ComputeCoverage(tpl, ti.BucketMinutes(), ti.BucketsPerDay())
		if err != nil {
			continue
		}
		for _, s := range span.Slots() {
			day := a.DayIndex + s.DayOffset
			if day >= ti.Days() {
				continue
			}
			onShift[empSlot{emp: a.EmployeeID, day: day, bucket: s.Bucket}] = struct{}{}
		}
	}

	allocCount := make(map[empSlot]int)
	for _, al := range sol.Allocations {
		slot := empSlot{emp: al.EmployeeID, day: al.DayIndex, bucket: al.BucketIndex}
		allocCount[slot]++
		if _, ok := onShift[slot]; !ok {
			violations = append(violations, Violation{
				Type:       ViolationOffShiftAlloc,
				EmployeeID: al.EmployeeID,
				DayIndex:   al.DayIndex,
				Message: fmt.Sprintf("员工 %s 在天 %d 时段 %d 未在岗却被分配到 %s",
					al.EmployeeID, al.DayIndex, al.BucketIndex, al.SkillGroupID),
			})
		}
		if emp, ok := empByID[al.EmployeeID]; ok && !emp.HasSkillGroup(al.SkillGroupID) {
			violations = append(violations, Violation{
				Type:       ViolationSkillMismatch,
				EmployeeID: al.EmployeeID,
				DayIndex:   al.DayIndex,
				Message: fmt.Sprintf("员工 %s 不具备技能组 %s 却被分配", al.EmployeeID, al.SkillGroupID),
			})
		}
	}
	for slot, n := range allocCount {
		if n > 1 {
			violations = append(violations, Violation{
				Type:       ViolationDoubleAlloc,
				EmployeeID: slot.emp,
				DayIndex:   slot.day,
				Message: fmt.Sprintf("员工 %s 在天 %d 时段 %d 被分配到 %d 个技能组",
					slot.emp, slot.day, slot.bucket, n),
			})
		}
	}
	return violations
}

// verifyCoverage 覆盖表自洽：分配不超需求，分配+缺员不低于需求
func (v *SolutionVerifier) verifyCoverage(sol *model.Solution) []Violation {
	var violations []Violation
	for _, c := range sol.Coverage {
		if c.Allocated > float64(c.Required)+verifyTol {
			violations = append(violations, Violation{
				Type:     ViolationOverAlloc,
				DayIndex: c.DayIndex,
				Message: fmt.Sprintf("天 %d 时段 %d 技能组 %s 分配 %.0f 超过需求 %d",
					c.DayIndex, c.BucketIndex, c.SkillGroupID, c.Allocated, c.Required),
			})
		}
		if c.Allocated+c.Understaff < float64(c.Required)-verifyTol {
			violations = append(violations, Violation{
				Type:     ViolationCoverageGap,
				DayIndex: c.DayIndex,
				Message: fmt.Sprintf("天 %d 时段 %d 技能组 %s 分配 %.0f + 缺员 %.2f 未达需求 %d",
					c.DayIndex, c.BucketIndex, c.SkillGroupID, c.Allocated, c.Understaff, c.Required),
			})
		}
	}
	return violations
}

// verifyAllocationTotals 分配明细按 (天, 时段, 技能组) 重新合计后必须与覆盖表一致
func (v *SolutionVerifier) verifyAllocationTotals(sol *model.Solution) []Violation {
	var violations []Violation

	type covSlot struct {
		day    int
		bucket int
		sg     string
	}
	sums := make(map[covSlot]float64)
	for _, al := range sol.Allocations {
		sums[covSlot{day: al.DayIndex, bucket: al.BucketIndex, sg: al.SkillGroupID}]++
	}

	seen := make(map[covSlot]struct{}, len(sol.Coverage))
	for _, c := range sol.Coverage {
		slot := covSlot{day: c.DayIndex, bucket: c.BucketIndex, sg: c.SkillGroupID}
		seen[slot] = struct{}{}
		if got := sums[slot]; got > c.Allocated+verifyTol || got < c.Allocated-verifyTol {
			violations = append(violations, Violation{
				Type:     ViolationAllocMismatch,
				DayIndex: c.DayIndex,
				Message: fmt.Sprintf("天 %d 时段 %d 技能组 %s 分配明细合计 %.0f 与覆盖表 %.0f 不一致",
					c.DayIndex, c.BucketIndex, c.SkillGroupID, got, c.Allocated),
			})
		}
	}
	// 分配明细落在覆盖表之外同样是不一致
	for slot, got := range sums {
		if _, ok := seen[slot]; !ok {
			violations = append(violations, Violation{
				Type:     ViolationAllocMismatch,
				DayIndex: slot.day,
				Message: fmt.Sprintf("天 %d 时段 %d 技能组 %s 有 %.0f 条分配明细但覆盖表无此时段",
					slot.day, slot.bucket, slot.sg, got),
			})
		}
	}
	return violations
}

// verifyWeeklyHours 以起始日对齐的7天块内周工时上下界
func (v *SolutionVerifier) verifyWeeklyHours(in *model.Input, ti *planner.TimeIndex, sol *model.Solution) []Violation {
	var violations []Violation

	tplByID := make(map[string]*model.ShiftTemplate, len(in.ShiftTemplates))
	for i := range in.ShiftTemplates {
		tplByID[in.ShiftTemplates[i].ID] = &in.ShiftTemplates[i]
	}

	type empWeek struct {
		emp  string
		week int
	}
	hours := make(map[empWeek]float64)
	scheduled := make(map[string]struct{})
	for _, a := range sol.Assignments {
		tpl, ok := tplByID[a.ShiftTemplateID]
		if !ok {
			continue
		}
		key := empWeek{emp: a.EmployeeID, week: ti.WeekOf(a.DayIndex)}
		hours[key] += tpl.WorkedHours(ti.BucketMinutes())
		scheduled[a.EmployeeID] = struct{}{}
	}

	for i := range in.Employees {
		emp := &in.Employees[i]
		if _, ok := scheduled[emp.ID]; !ok {
			// 完全未被排班的员工不卷入周下界检查，对应无可用模板的告警路径
			continue
		}
		group := in.EmploymentGroupByID(emp.EmploymentGroupID)
		if group == nil {
			continue
		}
		for _, w := range ti.Weeks() {
			h := hours[empWeek{emp: emp.ID, week: w}]
			if h < group.HoursPerWeek.Min-verifyTol || h > group.HoursPerWeek.Max+verifyTol {
				violations = append(violations, Violation{
					Type:       ViolationWeeklyHours,
					EmployeeID: emp.ID,
					DayIndex:   w * 7,
					Message: fmt.Sprintf("员工 %s 第 %d 周工时 %.1f 超出 [%.1f, %.1f]",
						emp.ID, w, h, group.HoursPerWeek.Min, group.HoursPerWeek.Max),
				})
			}
		}
	}
	return violations
}
