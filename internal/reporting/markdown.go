package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Price Elasticity Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Coverage\n\n")
	sb.WriteString("| Level | Rows | Estimated | Null | Null Rate |\n")
	sb.WriteString("|-------|------|-----------|------|-----------|\n")
	for _, s := range r.LevelSummaries {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.1f%% |\n",
			s.Level, s.TotalRows, s.Estimated, s.NullRows, s.NullRate*100))
	}
	sb.WriteString("\n")

	sb.WriteString("## Product Extremes\n\n")
	if r.MostElastic == nil {
		sb.WriteString("No product row carries a numeric estimate.\n\n")
	} else {
		sb.WriteString("| | Product | Price Type | Elasticity | Sample Size |\n")
		sb.WriteString("|-|---------|------------|------------|-------------|\n")
		sb.WriteString(extremeRow("Most elastic", r.MostElastic))
		sb.WriteString(extremeRow("Least elastic", r.LeastElastic))
		sb.WriteString("\n")
	}

	sb.WriteString("## Product Elasticities\n\n")
	writeRowTable(&sb, r.ProductRows)

	sb.WriteString("## Customer Elasticities\n\n")
	writeRowTable(&sb, r.CustomerRows)

	sb.WriteString("## Customer-Product Elasticities\n\n")
	writeRowTable(&sb, r.PairRows)

	return sb.String()
}

func extremeRow(label string, r *ElasticityRow) string {
	return fmt.Sprintf("| %s | %s | %s | %.6f | %d |\n",
		label, idField(r.ProductID), r.PriceType, *r.Elasticity, r.SampleSize)
}

func writeRowTable(sb *strings.Builder, rows []ElasticityRow) {
	if len(rows) == 0 {
		sb.WriteString("No rows.\n\n")
		return
	}
	sb.WriteString("| Product | Customer | Price Type | Elasticity | Sample Size |\n")
	sb.WriteString("|---------|----------|------------|------------|-------------|\n")
	for _, r := range rows {
		elasticity := "null"
		if r.Elasticity != nil {
			elasticity = fmt.Sprintf("%.6f", *r.Elasticity)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n",
			idField(r.ProductID), idField(r.CustomerID), r.PriceType, elasticity, r.SampleSize))
	}
	sb.WriteString("\n")
}
