package planner

import (
	"testing"

	"github.com/shiftopt/shiftopt/pkg/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveWeights_Baseline(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 2, 60)

	w, err := ResolveWeights(nil, ti)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	stream := model.Stream{Direction: "inbound", Channel: "voice"}
	if got := w.At(0, 10, stream); got != 1.0 {
		t.Errorf("无规则时权重 = %v, expected 1.0", got)
	}
}

func TestResolveWeights_RankLadder(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 1, 60)
	stream := model.Stream{Direction: "inbound", Channel: "voice"}

	// 低排名权重与基线1.0取最大，不会把命中时段压到基线以下
	tests := []struct {
		name string
		rank int
		want float64
	}{
		{"排名1", 1, 100},
		{"排名2", 2, 10},
		{"排名3", 3, 1},
		{"排名4", 4, 1.0},
		{"排名5", 5, 1.0},
		{"排名9兜底", 9, 1.0},
		{"排名0兜底", 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []model.PriorityRule{
				{StartTimeLocal: "08:00", EndTimeLocal: "09:00", Priorities: []model.PriorityEntry{
					{Direction: "inbound", Channel: "voice", Rank: tt.rank},
				}},
			}
			w, err := ResolveWeights(rules, ti)
			if err != nil {
				t.Fatalf("ResolveWeights() error: %v", err)
			}
			if got := w.At(0, 8, stream); got != tt.want {
				t.Errorf("权重 = %v, expected %v", got, tt.want)
			}
			// 窗口外仍为基线
			if got := w.At(0, 9, stream); got != 1.0 {
				t.Errorf("窗口外权重 = %v, expected 1.0", got)
			}
		})
	}
}

func TestResolveWeights_ExplicitWeightOverridesRank(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 1, 60)
	stream := model.Stream{Direction: "inbound", Channel: "voice"}
	rules := []model.PriorityRule{
		{StartTimeLocal: "08:00", EndTimeLocal: "09:00", Priorities: []model.PriorityEntry{
			{Direction: "inbound", Channel: "voice", Rank: 1, UnderstaffWeight: floatPtr(42)},
		}},
	}

	w, err := ResolveWeights(rules, ti)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	if got := w.At(0, 8, stream); got != 42 {
		t.Errorf("显式权重 = %v, expected 42", got)
	}
}

func TestResolveWeights_ExplicitWeightFlooredAtBaseline(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 1, 60)
	stream := model.Stream{Direction: "inbound", Channel: "voice"}
	rules := []model.PriorityRule{
		{StartTimeLocal: "08:00", EndTimeLocal: "09:00", Priorities: []model.PriorityEntry{
			{Direction: "inbound", Channel: "voice", Rank: 1, UnderstaffWeight: floatPtr(0.2)},
		}},
	}

	w, err := ResolveWeights(rules, ti)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	// 显式权重低于基线时同样取最大值
	if got := w.At(0, 8, stream); got != 1.0 {
		t.Errorf("低于基线的显式权重 = %v, expected 1.0", got)
	}
}

func TestResolveWeights_MaxMergeOrderIndependent(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 1, 60)
	stream := model.Stream{Direction: "inbound", Channel: "voice"}

	a := model.PriorityRule{StartTimeLocal: "08:00", EndTimeLocal: "10:00", Priorities: []model.PriorityEntry{
		{Direction: "inbound", Channel: "voice", UnderstaffWeight: floatPtr(10)},
	}}
	b := model.PriorityRule{StartTimeLocal: "09:00", EndTimeLocal: "11:00", Priorities: []model.PriorityEntry{
		{Direction: "inbound", Channel: "voice", UnderstaffWeight: floatPtr(25)},
	}}

	for _, rules := range [][]model.PriorityRule{{a, b}, {b, a}} {
		w, err := ResolveWeights(rules, ti)
		if err != nil {
			t.Fatalf("ResolveWeights() error: %v", err)
		}
		// 重叠时段取最大值，与规则顺序无关
		if got := w.At(0, 9, stream); got != 25 {
			t.Errorf("重叠时段权重 = %v, expected 25", got)
		}
		if got := w.At(0, 8, stream); got != 10 {
			t.Errorf("仅规则a覆盖的时段 = %v, expected 10", got)
		}
		if got := w.At(0, 10, stream); got != 25 {
			t.Errorf("仅规则b覆盖的时段 = %v, expected 25", got)
		}
	}
}

func TestResolveWeights_DayFilter(t *testing.T) {
	// 2026-01-01 为周四
	ti := mustIndex(t, "2026-01-01", 7, 60)
	stream := model.Stream{Direction: "inbound", Channel: "voice"}
	rules := []model.PriorityRule{
		{StartTimeLocal: "00:00", EndTimeLocal: "24:00", AppliesToDays: []string{"sat", "sun"},
			Priorities: []model.PriorityEntry{
				{Direction: "inbound", Channel: "voice", Rank: 1},
			}},
	}

	w, err := ResolveWeights(rules, ti)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	// 天2=周六、天3=周日命中
	if got := w.At(2, 12, stream); got != 100 {
		t.Errorf("周六权重 = %v, expected 100", got)
	}
	if got := w.At(3, 12, stream); got != 100 {
		t.Errorf("周日权重 = %v, expected 100", got)
	}
	// 工作日保持基线
	if got := w.At(0, 12, stream); got != 1.0 {
		t.Errorf("周四权重 = %v, expected 1.0", got)
	}
	if got := w.At(4, 12, stream); got != 1.0 {
		t.Errorf("周一权重 = %v, expected 1.0", got)
	}
}

func TestResolveWeights_StreamIsolation(t *testing.T) {
	ti := mustIndex(t, "2026-01-01", 1, 60)
	rules := []model.PriorityRule{
		{StartTimeLocal: "08:00", EndTimeLocal: "09:00", Priorities: []model.PriorityEntry{
			{Direction: "inbound", Channel: "voice", Rank: 1},
		}},
	}

	w, err := ResolveWeights(rules, ti)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	other := model.Stream{Direction: "inbound", Channel: "chat"}
	if got := w.At(0, 8, other); got != 1.0 {
		t.Errorf("未声明流的权重 = %v, expected 1.0", got)
	}
}
