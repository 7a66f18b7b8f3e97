package billing

import (
	"fmt"
	"strconv"
	"strings"

	"tutorbill/internal/model"
	"tutorbill/internal/period"
)

// billingTemplate is the per-student payment notice. The wording is a
// product decision; reproduce verbatim.
const billingTemplate = "%s繳費通知\n上個月的上課總時數為%s小時，費用是%s元\n再麻煩了~謝謝"

// Compose turns an aggregation result into the ordered payload sequence
// handed to the messaging transport:
//
//   - one payload per billed student, in aggregation order
//   - one consolidated payload for ambiguous events, if any
//   - one consolidated payload for unresolved emails, if any
//   - a single "no activity" payload when all three sets are empty
//
// The composer never produces zero payloads.
func Compose(result model.AggregationResult, year, month int) []string {
	payloads := make([]string, 0, len(result.Lines)+2)

	for _, line := range result.Lines {
		payloads = append(payloads, fmt.Sprintf(billingTemplate,
			line.DisplayName, formatAmount(line.Hours), formatAmount(line.Fee)))
	}

	if len(result.AmbiguousEvents) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "%d年%d月有%d堂課無法判斷學生，請手動確認：", year, month, len(result.AmbiguousEvents))
		for _, start := range result.AmbiguousEvents {
			b.WriteString("\n")
			b.WriteString(start.In(period.Zone).Format("2006-01-02 15:04"))
		}
		payloads = append(payloads, b.String())
	}

	if len(result.UnresolvedEmails) > 0 {
		var b strings.Builder
		b.WriteString("以下學生不在名冊中，請更新名冊後重新計算：")
		for _, email := range result.UnresolvedEmails {
			b.WriteString("\n")
			b.WriteString(email)
		}
		payloads = append(payloads, b.String())
	}

	if len(payloads) == 0 {
		payloads = append(payloads, fmt.Sprintf("%d年%d月沒有上課紀錄", year, month))
	}

	return payloads
}

// formatAmount renders a rounded value without trailing zeros
// (1.5 -> "1.5", 750 -> "750").
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
