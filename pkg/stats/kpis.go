// Package stats 提供排班结果的指标统计
package stats

import (
	"sort"

	"github.com/shiftopt/shiftopt/pkg/model"
)

// KPIReport 一次规划运行的关键指标
type KPIReport struct {
	// 整体指标
	TotalRequired      int     `json:"total_required"`       // 总需求人时段数
	TotalAllocated     float64 `json:"total_allocated"`      // 总分配人时段数
	TotalUnderstaff    float64 `json:"total_understaff"`     // 总缺员人时段数
	FillRate           float64 `json:"fill_rate"`            // 需求满足率 (%)
	WeightedUnderstaff float64 `json:"weighted_understaff"`  // 加权缺员（目标函数值）

	// 排班规模
	AssignedShifts     int `json:"assigned_shifts"`     // 班次指派总数
	ScheduledEmployees int `json:"scheduled_employees"` // 被排班的员工数

	// 分维度统计
	BySkillGroup map[string]GroupKPI `json:"by_skill_group"` // 按技能组
	ByStream     map[string]GroupKPI `json:"by_stream"`      // 按需求流 (direction:channel)
	ByDay        []DayKPI            `json:"by_day"`         // 按天

	// 问题时段，按缺员量降序
	WorstSlots []SlotKPI `json:"worst_slots,omitempty"`
}

// GroupKPI 单个维度分组的指标
type GroupKPI struct {
	Required   int     `json:"required"`
	Allocated  float64 `json:"allocated"`
	Understaff float64 `json:"understaff"`
	FillRate   float64 `json:"fill_rate"`
}

// DayKPI 单天的指标
type DayKPI struct {
	DayIndex   int     `json:"day_index"`
	Required   int     `json:"required"`
	Allocated  float64 `json:"allocated"`
	Understaff float64 `json:"understaff"`
	FillRate   float64 `json:"fill_rate"`
}

// SlotKPI 单个时段的缺员记录
type SlotKPI struct {
	DayIndex     int     `json:"day_index"`
	BucketIndex  int     `json:"bucket_index"`
	SkillGroupID string  `json:"skill_group_id"`
	Required     int     `json:"required"`
	Understaff   float64 `json:"understaff"`
}

// 问题时段榜单长度上限
const maxWorstSlots = 20

// KPIAnalyzer 排班结果指标分析器
type KPIAnalyzer struct{}

// NewKPIAnalyzer 创建指标分析器
func NewKPIAnalyzer() *KPIAnalyzer {
	return &KPIAnalyzer{}
}

// Analyze 从规划结果计算指标报告
// 以稠密覆盖表为主数据源，需求满足率 = min(分配, 需求)/需求
func (a *KPIAnalyzer) Analyze(sol *model.Solution) *KPIReport {
	report := &KPIReport{
		WeightedUnderstaff: sol.ObjectiveValue,
		AssignedShifts:     len(sol.Assignments),
		BySkillGroup:       make(map[string]GroupKPI),
		ByStream:           make(map[string]GroupKPI),
	}

	seen := make(map[string]struct{})
	for _, as := range sol.Assignments {
		seen[as.EmployeeID] = struct{}{}
	}
	report.ScheduledEmployees = len(seen)

	dayStats := make(map[int]*DayKPI)
	maxDay := -1
	for _, c := range sol.Coverage {
		report.TotalRequired += c.Required
		report.TotalAllocated += c.Allocated
		report.TotalUnderstaff += c.Understaff

		sg := report.BySkillGroup[c.SkillGroupID]
		sg.Required += c.Required
		sg.Allocated += c.Allocated
		sg.Understaff += c.Understaff
		report.BySkillGroup[c.SkillGroupID] = sg

		streamKey := model.Stream{Direction: c.Direction, Channel: c.Channel}.Key()
		st := report.ByStream[streamKey]
		st.Required += c.Required
		st.Allocated += c.Allocated
		st.Understaff += c.Understaff
		report.ByStream[streamKey] = st

		day, ok := dayStats[c.DayIndex]
		if !ok {
			day = &DayKPI{DayIndex: c.DayIndex}
			dayStats[c.DayIndex] = day
		}
		day.Required += c.Required
		day.Allocated += c.Allocated
		day.Understaff += c.Understaff
		if c.DayIndex > maxDay {
			maxDay = c.DayIndex
		}
	}

	report.FillRate = fillRate(report.TotalRequired, report.TotalAllocated)
	for id, g := range report.BySkillGroup {
		g.FillRate = fillRate(g.Required, g.Allocated)
		report.BySkillGroup[id] = g
	}
	for key, g := range report.ByStream {
		g.FillRate = fillRate(g.Required, g.Allocated)
		report.ByStream[key] = g
	}
	for d := 0; d <= maxDay; d++ {
		if day, ok := dayStats[d]; ok {
			day.FillRate = fillRate(day.Required, day.Allocated)
			report.ByDay = append(report.ByDay, *day)
		}
	}

	// 缺员最重的时段
	for _, u := range sol.Understaff {
		report.WorstSlots = append(report.WorstSlots, SlotKPI{
			DayIndex:     u.DayIndex,
			BucketIndex:  u.BucketIndex,
			SkillGroupID: u.SkillGroupID,
			Required:     u.Required,
			Understaff:   u.Understaff,
		})
	}
	sort.SliceStable(report.WorstSlots, func(i, j int) bool {
		return report.WorstSlots[i].Understaff > report.WorstSlots[j].Understaff
	})
	if len(report.WorstSlots) > maxWorstSlots {
		report.WorstSlots = report.WorstSlots[:maxWorstSlots]
	}

	return report
}

// fillRate 计算需求满足率，无需求时视为100%
func fillRate(required int, allocated float64) float64 {
	if required <= 0 {
		return 100
	}
	satisfied := allocated
	if satisfied > float64(required) {
		satisfied = float64(required)
	}
	return satisfied / float64(required) * 100
}
