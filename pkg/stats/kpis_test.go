package stats

import (
	"math"
	"testing"

	"github.com/shiftopt/shiftopt/pkg/model"
)

func sampleSolution() *model.Solution {
	return &model.Solution{
		Status:          "Optimal",
		ObjectiveValue:  10,
		TotalUnderstaff: 1,
		Assignments: []model.Assignment{
			{EmployeeID: "emp_a", DayIndex: 0, EmploymentGroupID: "full_time", ShiftTemplateID: "t_early"},
			{EmployeeID: "emp_a", DayIndex: 1, EmploymentGroupID: "full_time", ShiftTemplateID: "t_early"},
			{EmployeeID: "emp_b", DayIndex: 0, EmploymentGroupID: "full_time", ShiftTemplateID: "t_late"},
		},
		Understaff: []model.UnderstaffEntry{
			{DayIndex: 0, BucketIndex: 2, SkillGroupID: "sg_voice", Direction: "inbound", Channel: "voice",
				Required: 3, Understaff: 1, Weight: 10},
		},
		Coverage: []model.CoverageEntry{
			{DayIndex: 0, BucketIndex: 0, SkillGroupID: "sg_voice", Direction: "inbound", Channel: "voice",
				Required: 2, Allocated: 2},
			{DayIndex: 0, BucketIndex: 2, SkillGroupID: "sg_voice", Direction: "inbound", Channel: "voice",
				Required: 3, Allocated: 2, Understaff: 1},
			{DayIndex: 0, BucketIndex: 0, SkillGroupID: "sg_chat", Direction: "inbound", Channel: "chat",
				Required: 1, Allocated: 1},
			{DayIndex: 1, BucketIndex: 0, SkillGroupID: "sg_voice", Direction: "inbound", Channel: "voice",
				Required: 0, Allocated: 0},
		},
	}
}

func TestKPIAnalyzer_Analyze(t *testing.T) {
	report := NewKPIAnalyzer().Analyze(sampleSolution())

	if report.TotalRequired != 6 {
		t.Errorf("TotalRequired = %d, expected 6", report.TotalRequired)
	}
	if report.TotalAllocated != 5 {
		t.Errorf("TotalAllocated = %v, expected 5", report.TotalAllocated)
	}
	if report.TotalUnderstaff != 1 {
		t.Errorf("TotalUnderstaff = %v, expected 1", report.TotalUnderstaff)
	}
	if math.Abs(report.FillRate-5.0/6.0*100) > 1e-9 {
		t.Errorf("FillRate = %v", report.FillRate)
	}
	if report.WeightedUnderstaff != 10 {
		t.Errorf("WeightedUnderstaff = %v, expected 10", report.WeightedUnderstaff)
	}
	if report.AssignedShifts != 3 {
		t.Errorf("AssignedShifts = %d, expected 3", report.AssignedShifts)
	}
	if report.ScheduledEmployees != 2 {
		t.Errorf("ScheduledEmployees = %d, expected 2", report.ScheduledEmployees)
	}
}

func TestKPIAnalyzer_ByDimension(t *testing.T) {
	report := NewKPIAnalyzer().Analyze(sampleSolution())

	voice := report.BySkillGroup["sg_voice"]
	if voice.Required != 5 || voice.Allocated != 4 || voice.Understaff != 1 {
		t.Errorf("sg_voice指标异常: %+v", voice)
	}
	chat := report.BySkillGroup["sg_chat"]
	if chat.Required != 1 || chat.FillRate != 100 {
		t.Errorf("sg_chat指标异常: %+v", chat)
	}

	stVoice := report.ByStream["inbound:voice"]
	if stVoice.Required != 5 || stVoice.Understaff != 1 {
		t.Errorf("inbound:voice指标异常: %+v", stVoice)
	}

	if len(report.ByDay) != 2 {
		t.Fatalf("ByDay长度 = %d, expected 2", len(report.ByDay))
	}
	if report.ByDay[0].DayIndex != 0 || report.ByDay[0].Required != 6 {
		t.Errorf("天0指标异常: %+v", report.ByDay[0])
	}
	// 零需求天满足率为100%
	if report.ByDay[1].FillRate != 100 {
		t.Errorf("天1满足率 = %v, expected 100", report.ByDay[1].FillRate)
	}
}

func TestKPIAnalyzer_WorstSlots(t *testing.T) {
	sol := sampleSolution()
	sol.Understaff = append(sol.Understaff, model.UnderstaffEntry{
		DayIndex: 1, BucketIndex: 0, SkillGroupID: "sg_chat",
		Required: 5, Understaff: 3, Weight: 1,
	})

	report := NewKPIAnalyzer().Analyze(sol)
	if len(report.WorstSlots) != 2 {
		t.Fatalf("WorstSlots长度 = %d, expected 2", len(report.WorstSlots))
	}
	// 按缺员量降序
	if report.WorstSlots[0].Understaff != 3 || report.WorstSlots[1].Understaff != 1 {
		t.Errorf("排序异常: %+v", report.WorstSlots)
	}
}

func TestKPIAnalyzer_EmptySolution(t *testing.T) {
	report := NewKPIAnalyzer().Analyze(&model.Solution{Status: "Optimal"})

	if report.TotalRequired != 0 {
		t.Errorf("TotalRequired = %d, expected 0", report.TotalRequired)
	}
	if report.FillRate != 100 {
		t.Errorf("零需求时 FillRate = %v, expected 100", report.FillRate)
	}
	if len(report.ByDay) != 0 {
		t.Errorf("ByDay应为空")
	}
}
