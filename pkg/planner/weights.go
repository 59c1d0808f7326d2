package planner

import (
	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// 缺员权重基线，未被任何规则命中的时段按此取值
const baselineWeight = 1.0

// 优先级排名到权重的阶梯
var rankWeights = map[int]float64{
	1: 100,
	2: 10,
	3: 1,
	4: 0.3,
	5: 0.1,
}

// 排名不在阶梯内时的兜底权重
const rankFallbackWeight = 0.05

type weightKey struct {
	Day    int
	Bucket int
	Stream model.Stream
}

// Weights 分时段分业务流的缺员权重表
type Weights struct {
	table map[weightKey]float64
}

// At 返回某时段某业务流的权重，未命中规则时为基线1.0
func (w *Weights) At(day, bucket int, stream model.Stream) float64 {
	if v, ok := w.table[weightKey{Day: day, Bucket: bucket, Stream: stream}]; ok {
		return v
	}
	return baselineWeight
}

// ResolveWeights 把优先级规则展开为权重表
// 多条规则命中同一键时取最大权重，与规则顺序无关；时段范围裁剪到当天之内
func ResolveWeights(rules []model.PriorityRule, ti *TimeIndex) (*Weights, error) {
	w := &Weights{table: make(map[weightKey]float64)}
	bpd := ti.BucketsPerDay()

	for i, rule := range rules {
		startBucket, err := hhmmToBucket(rule.StartTimeLocal, ti.BucketMinutes())
		if err != nil {
			return nil, errors.InvalidInput("priority_rules", err.Error()).WithField("rule", i)
		}
		endBucket, err := hhmmToBucket(rule.EndTimeLocal, ti.BucketMinutes())
		if err != nil {
			return nil, errors.InvalidInput("priority_rules", err.Error()).WithField("rule", i)
		}
		if startBucket < 0 {
			startBucket = 0
		}
		if endBucket > bpd {
			endBucket = bpd
		}

		dayFilter := make(map[string]struct{}, len(rule.AppliesToDays))
		for _, dow := range rule.AppliesToDays {
			dayFilter[dow] = struct{}{}
		}

		for d := 0; d < ti.Days(); d++ {
			if len(dayFilter) > 0 {
				if _, ok := dayFilter[ti.DayOfWeek(d)]; !ok {
					continue
				}
			}
			for _, entry := range rule.Priorities {
				stream := entry.Stream()
				weight := rankFallbackWeight
				if v, ok := rankWeights[entry.Rank]; ok {
					weight = v
				}
				if entry.UnderstaffWeight != nil {
					weight = *entry.UnderstaffWeight
				}
				for b := startBucket; b < endBucket; b++ {
					key := weightKey{Day: d, Bucket: b, Stream: stream}
					// 与基线合并取最大：低排名权重不能把时段压到1.0以下
					prev, ok := w.table[key]
					if !ok {
						prev = baselineWeight
					}
					if weight > prev {
						w.table[key] = weight
					} else {
						w.table[key] = prev
					}
				}
			}
		}
	}
	return w, nil
}
