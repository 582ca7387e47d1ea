//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Render writes the report as a console table with colored statuses.
func (r *Report) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Relation", "Status", "Violations", "Detail"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, res := range r.Results {
		status := color.GreenString(string(StatusPass))
		if res.Status == StatusFail {
			status = color.RedString(string(StatusFail))
		}
		table.Append([]string{
			res.Check,
			res.Relation,
			status,
			strconv.FormatInt(res.Violations, 10),
			res.Detail,
		})
	}
	table.Render()

	failed := r.Failed()
	if failed == 0 {
		fmt.Fprintf(w, "\n%s all %d checks passed\n",
			color.GreenString("OK:"), len(r.Results))
	} else {
		fmt.Fprintf(w, "\n%s %d of %d checks failed\n",
			color.RedString("FAILED:"), failed, len(r.Results))
	}
}
