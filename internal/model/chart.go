package model

// ChartSeries 图表序列（每次渲染重新生成，不持久化）
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Status Status    `json:"status"` // calculated / unavailable
}

// EmptySeries 无数据序列
func EmptySeries() ChartSeries {
	return ChartSeries{
		Labels: []string{},
		Values: []float64{},
		Status: StatusUnavailable,
	}
}

// Len 数据点数量
func (s ChartSeries) Len() int {
	return len(s.Labels)
}
