package dataprocessing

import (
	"fmt"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// BuildBarChart describes a bar chart of plot groups, one bar per group in
// the order given.
func BuildBarChart(groups []domain.GroupValue, groupCol, measureCol string, method domain.AggregationMethod) domain.BarChart {
	method = method.Normalize()
	yLabel := fmt.Sprintf("%s of %s", method, measureCol)

	points := make([]domain.ChartPoint, len(groups))
	for i, g := range groups {
		points[i] = domain.ChartPoint{Label: g.Key, Value: domain.NullableFloat(g.Value)}
	}

	return domain.BarChart{
		ChartType: "bar",
		Title:     fmt.Sprintf("%s by %s", yLabel, groupCol),
		XAxis:     groupCol,
		YAxis:     yLabel,
		Series:    []domain.ChartSeries{{Name: yLabel, Data: points}},
	}
}
