package planner

import (
	"sort"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// Demand 聚合后的需求
// Required 仅保存有需求的时段，未出现的键视为0
type Demand struct {
	Required map[model.SlotKey]int
	// StreamOf 技能组到业务流的映射，来源于声明并经预测行校验
	StreamOf map[string]model.Stream
	// Streams 输入中出现过的全部业务流
	Streams map[model.Stream]struct{}
}

// RequiredAt 返回某时段某技能组的需求人数
func (d *Demand) RequiredAt(day, bucket int, skillGroupID string) int {
	return d.Required[model.SlotKey{Day: day, Bucket: bucket, SkillGroup: skillGroupID}]
}

// SortedKeys 返回按天、时段、技能组排序的需求键，用于确定性遍历
func (d *Demand) SortedKeys() []model.SlotKey {
	keys := make([]model.SlotKey, 0, len(d.Required))
	for k := range d.Required {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		if keys[i].Bucket != keys[j].Bucket {
			return keys[i].Bucket < keys[j].Bucket
		}
		return keys[i].SkillGroup < keys[j].SkillGroup
	})
	return keys
}

// AggregateDemand 把原始预测行折叠为按 (天, 时段, 技能组) 的需求表
// 同键多行人数相加；技能组的业务流声明与预测行不一致时报 InconsistentStream
func AggregateDemand(in *model.Input, ti *TimeIndex) (*Demand, error) {
	d := &Demand{
		Required: make(map[model.SlotKey]int),
		StreamOf: make(map[string]model.Stream),
		Streams:  make(map[model.Stream]struct{}),
	}

	// 只登记显式声明的流向，未声明的技能组采用预测行中首次出现的流向
	for _, sg := range in.SkillGroups {
		stream := sg.DeclaredStream()
		if stream.IsZero() {
			continue
		}
		if prev, ok := d.StreamOf[sg.ID]; ok && prev != stream {
			return nil, errors.InconsistentStream(sg.ID, prev.Key(), stream.Key())
		}
		d.StreamOf[sg.ID] = stream
		d.Streams[stream] = struct{}{}
	}

	for i, row := range in.Forecast {
		ts, err := parseForecastTimestamp(row.TimestampLocal)
		if err != nil {
			return nil, errors.InvalidInput("forecast", err.Error()).
				WithField("row", i).WithField("skill_group_id", row.SkillGroupID)
		}
		slot, err := ti.SlotOf(ts)
		if err != nil {
			return nil, err
		}

		stream := row.Stream()
		if !stream.IsZero() {
			if prev, ok := d.StreamOf[row.SkillGroupID]; ok {
				if prev != stream {
					return nil, errors.InconsistentStream(row.SkillGroupID, prev.Key(), stream.Key())
				}
			} else {
				d.StreamOf[row.SkillGroupID] = stream
			}
			d.Streams[stream] = struct{}{}
		}

		key := model.SlotKey{Day: slot.Day, Bucket: slot.Bucket, SkillGroup: row.SkillGroupID}
		d.Required[key] += row.Agents
	}

	// 优先级规则与营业时间声明的业务流也纳入全集
	for _, rule := range in.PriorityRules {
		for _, entry := range rule.Priorities {
			if s := entry.Stream(); !s.IsZero() {
				d.Streams[s] = struct{}{}
			}
		}
	}
	for _, oh := range in.OperatingHours {
		if s := oh.Stream(); !s.IsZero() {
			d.Streams[s] = struct{}{}
		}
	}

	return d, nil
}
