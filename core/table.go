package core

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/evilsocket/daqview/models"
)

// visibleRange clamps a scroll offset and returns the slice bounds to show.
func visibleRange(total, offset, rows int) (from, to int) {
	if offset > total-rows {
		offset = total - rows
	}
	if offset < 0 {
		offset = 0
	}

	from = offset
	to = from + rows
	if to > total {
		to = total
	}
	return
}

func renderTable(readings []models.Reading, offset, rows int) string {
	if len(readings) == 0 {
		return "no data in window\n"
	}

	sb := strings.Builder{}
	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"Recording Time", "ID", "Data_1", "Data_2"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	from, to := visibleRange(len(readings), offset, rows)
	for _, r := range readings[from:to] {
		table.Append([]string{
			r.Timestamp.Format(models.TimeFormat),
			fmt.Sprintf("%d", r.ID),
			fmt.Sprintf("%v", r.Primary),
			fmt.Sprintf("%v", r.Secondary),
		})
	}

	if to-from < len(readings) {
		table.SetCaption(true, fmt.Sprintf("rows %d-%d of %d", from+1, to, len(readings)))
	}

	table.Render()
	return sb.String()
}
