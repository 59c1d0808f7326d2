package planner

import (
	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// spanSlot 班次覆盖的一个时段，DayOffset 为相对开始那天的天偏移
type spanSlot struct {
	DayOffset int
	Bucket    int
}

// CoverageSpan 班次模板的覆盖预计算结果
// 与开始那天无关，模型构建时按天平移复用
type CoverageSpan struct {
	TemplateID string
	slots      []spanSlot
	covered    map[spanSlot]struct{}
	maxOffset  int
}

// Slots 返回覆盖的时段列表，按时间升序
func (cs *CoverageSpan) Slots() []spanSlot {
	return cs.slots
}

// Covers 判断是否覆盖某 (天偏移, 时段)
func (cs *CoverageSpan) Covers(dayOffset, bucket int) bool {
	_, ok := cs.covered[spanSlot{DayOffset: dayOffset, Bucket: bucket}]
	return ok
}

// Len 返回覆盖的时段数
func (cs *CoverageSpan) Len() int {
	return len(cs.slots)
}

// MaxDayOffset 返回覆盖到的最大天偏移，跨午夜班次为1
func (cs *CoverageSpan) MaxDayOffset() int {
	return cs.maxOffset
}

// ComputeCoverage 把班次模板展开为覆盖时段集合
// 时长模板按整时段截断展开；模式模板仅值为1的位置计为工作
func ComputeCoverage(t *model.ShiftTemplate, bucketMinutes, bucketsPerDay int) (*CoverageSpan, error) {
	startBucket, err := hhmmToBucket(t.StartTimeLocal, bucketMinutes)
	if err != nil {
		return nil, errors.MalformedTemplate(t.ID, err.Error())
	}

	cs := &CoverageSpan{
		TemplateID: t.ID,
		covered:    make(map[spanSlot]struct{}),
	}
	add := func(absBucket int) {
		slot := spanSlot{
			DayOffset: absBucket / bucketsPerDay,
			Bucket:    absBucket % bucketsPerDay,
		}
		if _, ok := cs.covered[slot]; ok {
			return
		}
		cs.covered[slot] = struct{}{}
		cs.slots = append(cs.slots, slot)
		if slot.DayOffset > cs.maxOffset {
			cs.maxOffset = slot.DayOffset
		}
	}

	switch t.Kind() {
	case model.TemplateDuration:
		// 整数除法截断：不足一个时段的尾段不计覆盖
		n := t.DurationMinutes / bucketMinutes
		for i := 0; i < n; i++ {
			add(startBucket + i)
		}
	case model.TemplatePattern:
		for i, v := range t.BucketWorkPattern {
			if v != 1 {
				continue
			}
			add(startBucket + i)
		}
	default:
		return nil, errors.MalformedTemplate(t.ID,
			"必须且只能提供 duration_minutes 或 bucket_work_pattern 其中之一")
	}
	return cs, nil
}

// ComputeAllCoverage 为全部模板预计算覆盖，返回与模板切片同序的结果
func ComputeAllCoverage(templates []model.ShiftTemplate, bucketMinutes, bucketsPerDay int) ([]*CoverageSpan, error) {
	spans := make([]*CoverageSpan, len(templates))
	for i := range templates {
		cs, err := ComputeCoverage(&templates[i], bucketMinutes, bucketsPerDay)
		if err != nil {
			return nil, err
		}
		spans[i] = cs
	}
	return spans, nil
}
