package planner

import (
	"testing"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

func TestComputeCoverage_Duration(t *testing.T) {
	tpl := &model.ShiftTemplate{ID: "t_day", StartTimeLocal: "09:00", DurationMinutes: 480}

	cs, err := ComputeCoverage(tpl, 30, 48)
	if err != nil {
		t.Fatalf("ComputeCoverage() error: %v", err)
	}
	if cs.Len() != 16 {
		t.Errorf("覆盖时段数 = %d, expected 16", cs.Len())
	}
	if !cs.Covers(0, 18) {
		t.Errorf("应覆盖 (0, 18)")
	}
	if !cs.Covers(0, 33) {
		t.Errorf("应覆盖 (0, 33)")
	}
	if cs.Covers(0, 17) || cs.Covers(0, 34) {
		t.Errorf("覆盖范围越界")
	}
	if cs.MaxDayOffset() != 0 {
		t.Errorf("MaxDayOffset() = %d, expected 0", cs.MaxDayOffset())
	}
}

func TestComputeCoverage_DurationTruncation(t *testing.T) {
	// 470分钟在30分钟网格下截断为15个时段，尾部不足一个时段的20分钟丢弃
	tpl := &model.ShiftTemplate{ID: "t_odd", StartTimeLocal: "08:00", DurationMinutes: 470}

	cs, err := ComputeCoverage(tpl, 30, 48)
	if err != nil {
		t.Fatalf("ComputeCoverage() error: %v", err)
	}
	if cs.Len() != 15 {
		t.Errorf("覆盖时段数 = %d, expected 15", cs.Len())
	}
}

func TestComputeCoverage_MidnightWrap(t *testing.T) {
	// 22:00开始8小时，22:00-24:00落在当天，00:00-06:00落在次日
	tpl := &model.ShiftTemplate{ID: "t_night", StartTimeLocal: "22:00", DurationMinutes: 480}

	cs, err := ComputeCoverage(tpl, 60, 24)
	if err != nil {
		t.Fatalf("ComputeCoverage() error: %v", err)
	}
	if cs.Len() != 8 {
		t.Fatalf("覆盖时段数 = %d, expected 8", cs.Len())
	}
	if !cs.Covers(0, 22) || !cs.Covers(0, 23) {
		t.Errorf("当天尾段未覆盖")
	}
	for b := 0; b < 6; b++ {
		if !cs.Covers(1, b) {
			t.Errorf("次日时段 %d 未覆盖", b)
		}
	}
	if cs.MaxDayOffset() != 1 {
		t.Errorf("MaxDayOffset() = %d, expected 1", cs.MaxDayOffset())
	}
}

func TestComputeCoverage_Pattern(t *testing.T) {
	// 带午休的模式：工作4段、休1段、再工作3段
	tpl := &model.ShiftTemplate{
		ID:                "t_split",
		StartTimeLocal:    "09:00",
		BucketWorkPattern: []int{1, 1, 1, 1, 0, 1, 1, 1},
	}

	cs, err := ComputeCoverage(tpl, 60, 24)
	if err != nil {
		t.Fatalf("ComputeCoverage() error: %v", err)
	}
	if cs.Len() != 7 {
		t.Errorf("覆盖时段数 = %d, expected 7", cs.Len())
	}
	if cs.Covers(0, 13) {
		t.Errorf("午休时段不应计为覆盖")
	}
	if !cs.Covers(0, 9) || !cs.Covers(0, 16) {
		t.Errorf("工作时段未覆盖")
	}
}

func TestComputeCoverage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tpl  model.ShiftTemplate
	}{
		{"两者皆无", model.ShiftTemplate{ID: "t1", StartTimeLocal: "09:00"}},
		{"两者皆有", model.ShiftTemplate{ID: "t2", StartTimeLocal: "09:00", DurationMinutes: 480, BucketWorkPattern: []int{1}}},
		{"起始时间非法", model.ShiftTemplate{ID: "t3", StartTimeLocal: "9am", DurationMinutes: 480}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeCoverage(&tt.tpl, 30, 48); !errors.Is(err, errors.CodeMalformedTemplate) {
				t.Errorf("应报 MALFORMED_TEMPLATE, got %v", err)
			}
		})
	}
}

func TestComputeAllCoverage(t *testing.T) {
	templates := []model.ShiftTemplate{
		{ID: "t_a", StartTimeLocal: "08:00", DurationMinutes: 240},
		{ID: "t_b", StartTimeLocal: "12:00", DurationMinutes: 240},
	}

	spans, err := ComputeAllCoverage(templates, 60, 24)
	if err != nil {
		t.Fatalf("ComputeAllCoverage() error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("结果数 = %d, expected 2", len(spans))
	}
	if spans[0].TemplateID != "t_a" || spans[1].TemplateID != "t_b" {
		t.Errorf("结果顺序与模板不一致")
	}
}
