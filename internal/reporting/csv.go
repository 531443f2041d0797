package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders one level's rows as a CSV string. Null estimates
// render as an empty elasticity field.
func RenderCSV(rows []ElasticityRow) string {
	var sb strings.Builder

	sb.WriteString("level,product_id,customer_id,price_type,elasticity,sample_size,computed_at\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%d,%d\n",
			r.Level,
			idField(r.ProductID),
			idField(r.CustomerID),
			r.PriceType,
			elasticityField(r.Elasticity),
			r.SampleSize,
			r.ComputedAt,
		))
	}

	return sb.String()
}

func idField(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}

func elasticityField(e *float64) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *e)
}
