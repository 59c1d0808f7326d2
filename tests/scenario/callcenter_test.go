// Package scenario 提供场景测试
package scenario

import (
	"context"
	"testing"

	"github.com/shiftopt/shiftopt/pkg/mip"
	"github.com/shiftopt/shiftopt/pkg/model"
	"github.com/shiftopt/shiftopt/pkg/planner"
	"github.com/shiftopt/shiftopt/pkg/stats"
	"github.com/shiftopt/shiftopt/pkg/validator"
)

// callCenterInput 小型呼叫中心场景：1天3个8小时时段，语音与在线两条需求流
func callCenterInput() *model.Input {
	return &model.Input{
		Time: model.TimeGridConfig{StartDate: "2026-03-02", Days: 1, BucketMinutes: 480},
		SkillGroups: []model.SkillGroup{
			{ID: "sg_voice", Name: "语音接入", Direction: "inbound", Channel: "voice"},
			{ID: "sg_chat", Name: "在线客服", Direction: "inbound", Channel: "chat"},
		},
		EmploymentGroups: []model.EmploymentGroup{
			{ID: "full_time",
				HoursPerDay:  model.HourBounds{Min: 8, Max: 8},
				HoursPerWeek: model.HourBounds{Min: 0, Max: 48}},
		},
		Employees: []model.Employee{
			{ID: "emp_1", EmploymentGroupID: "full_time", SkillGroupIDs: []string{"sg_voice"}},
			{ID: "emp_2", EmploymentGroupID: "full_time", SkillGroupIDs: []string{"sg_voice", "sg_chat"}},
			{ID: "emp_3", EmploymentGroupID: "full_time", SkillGroupIDs: []string{"sg_chat"}},
		},
		ShiftTemplates: []model.ShiftTemplate{
			{ID: "t_day", StartTimeLocal: "08:00", DurationMinutes: 480},
			{ID: "t_late", StartTimeLocal: "16:00", DurationMinutes: 480},
		},
		Forecast: []model.ForecastRow{
			{SkillGroupID: "sg_voice", TimestampLocal: "02-MAR-2026 08:00:00",
				Direction: "inbound", Channel: "voice", Agents: 2},
			{SkillGroupID: "sg_voice", TimestampLocal: "02-MAR-2026 16:00:00",
				Direction: "inbound", Channel: "voice", Agents: 1},
			{SkillGroupID: "sg_chat", TimestampLocal: "02-MAR-2026 16:00:00",
				Direction: "inbound", Channel: "chat", Agents: 1},
		},
		PriorityRules: []model.PriorityRule{
			{StartTimeLocal: "08:00", EndTimeLocal: "16:00",
				Priorities: []model.PriorityEntry{
					{Direction: "inbound", Channel: "voice", Rank: 1},
				}},
		},
	}
}

// TestCallCenterDaySchedule 白班高峰优先的呼叫中心排班
func TestCallCenterDaySchedule(t *testing.T) {
	in := callCenterInput()
	p := planner.New(mip.NewEnumSolver())

	sol, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("规划执行失败: %v", err)
	}

	t.Logf("求解状态: %s", sol.Status)
	t.Logf("目标值: %.2f", sol.ObjectiveValue)
	t.Logf("总缺员: %.2f", sol.TotalUnderstaff)
	t.Logf("指派数: %d", len(sol.Assignments))

	if sol.Status != "Optimal" {
		t.Fatalf("求解状态 = %s, expected Optimal", sol.Status)
	}

	// 高峰时段语音权重100，唯一最优解是白班全保语音、晚班保在线
	// 晚班语音需求1人无人可排，按基线权重1计入目标
	if sol.ObjectiveValue != 1 {
		t.Errorf("目标值 = %.2f, expected 1", sol.ObjectiveValue)
	}
	if sol.TotalUnderstaff != 1 {
		t.Errorf("总缺员 = %.2f, expected 1", sol.TotalUnderstaff)
	}
	if len(sol.Assignments) != 3 {
		t.Fatalf("指派数 = %d, expected 3", len(sol.Assignments))
	}

	shiftOf := make(map[string]string)
	for _, a := range sol.Assignments {
		shiftOf[a.EmployeeID] = a.ShiftTemplateID
	}
	if shiftOf["emp_1"] != "t_day" || shiftOf["emp_2"] != "t_day" {
		t.Errorf("高峰语音应由 emp_1/emp_2 白班保障, got %v", shiftOf)
	}
	if shiftOf["emp_3"] != "t_late" {
		t.Errorf("晚班在线应由 emp_3 保障, got %v", shiftOf)
	}

	// 缺员应只落在晚班语音
	if len(sol.Understaff) != 1 {
		t.Fatalf("缺员条目数 = %d, expected 1", len(sol.Understaff))
	}
	u := sol.Understaff[0]
	if u.SkillGroupID != "sg_voice" || u.BucketIndex != 2 || u.Understaff != 1 {
		t.Errorf("缺员位置不符: %+v", u)
	}

	// 结果自检不应有违规
	ti, err := planner.NewTimeIndex(in.Time)
	if err != nil {
		t.Fatalf("构建时间网格失败: %v", err)
	}
	violations := validator.NewSolutionVerifier().VerifyAll(in, ti, sol)
	if len(violations) != 0 {
		t.Errorf("结果校验发现违规: %v", violations)
	}
}

// TestCallCenterKPIs 场景指标汇总
func TestCallCenterKPIs(t *testing.T) {
	in := callCenterInput()
	p := planner.New(mip.NewEnumSolver())

	sol, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("规划执行失败: %v", err)
	}

	report := stats.NewKPIAnalyzer().Analyze(sol)
	t.Logf("总需求: %d, 总分配: %.0f, 满足率: %.1f%%",
		report.TotalRequired, report.TotalAllocated, report.FillRate)

	if report.TotalRequired != 4 {
		t.Errorf("总需求 = %d, expected 4", report.TotalRequired)
	}
	if report.TotalAllocated != 3 {
		t.Errorf("总分配 = %.0f, expected 3", report.TotalAllocated)
	}
	if report.TotalUnderstaff != 1 {
		t.Errorf("总缺员 = %.0f, expected 1", report.TotalUnderstaff)
	}
	if report.FillRate != 75 {
		t.Errorf("满足率 = %.1f, expected 75", report.FillRate)
	}
	if report.ScheduledEmployees != 3 {
		t.Errorf("被排班员工数 = %d, expected 3", report.ScheduledEmployees)
	}

	voice, ok := report.BySkillGroup["sg_voice"]
	if !ok {
		t.Fatal("应有 sg_voice 维度统计")
	}
	if voice.Required != 3 || voice.Understaff != 1 {
		t.Errorf("sg_voice 统计不符: %+v", voice)
	}
	chat := report.BySkillGroup["sg_chat"]
	if chat.Required != 1 || chat.Understaff != 0 {
		t.Errorf("sg_chat 统计不符: %+v", chat)
	}
}

// TestCallCenterTightWeek 周最低工时约束下的多日排班
func TestCallCenterTightWeek(t *testing.T) {
	in := callCenterInput()
	// 缩减到单技能单流，放大到2天，周最低16小时迫使每天出勤
	in.SkillGroups = in.SkillGroups[:1]
	in.Employees = []model.Employee{
		{ID: "emp_1", EmploymentGroupID: "full_time", SkillGroupIDs: []string{"sg_voice"}},
	}
	in.EmploymentGroups[0].HoursPerWeek.Min = 16
	in.Time.Days = 2
	in.Forecast = []model.ForecastRow{
		{SkillGroupID: "sg_voice", TimestampLocal: "02-MAR-2026 08:00:00",
			Direction: "inbound", Channel: "voice", Agents: 1},
		{SkillGroupID: "sg_voice", TimestampLocal: "03-MAR-2026 08:00:00",
			Direction: "inbound", Channel: "voice", Agents: 1},
	}
	in.PriorityRules = nil

	p := planner.New(mip.NewEnumSolver())
	sol, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("规划执行失败: %v", err)
	}
	if sol.Status != "Optimal" {
		t.Fatalf("求解状态 = %s, expected Optimal", sol.Status)
	}
	if len(sol.Assignments) != 2 {
		t.Fatalf("指派数 = %d, expected 2", len(sol.Assignments))
	}
	days := map[int]bool{}
	for _, a := range sol.Assignments {
		days[a.DayIndex] = true
	}
	if !days[0] || !days[1] {
		t.Errorf("两天都应有出勤, got %v", sol.Assignments)
	}
	if sol.TotalUnderstaff != 0 {
		t.Errorf("总缺员 = %.2f, expected 0", sol.TotalUnderstaff)
	}
}
