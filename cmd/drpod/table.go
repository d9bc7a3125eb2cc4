package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sa6mwa/drpod/internal/app/generator"
	"github.com/sa6mwa/drpod/internal/app/humanreadable"
	"github.com/sa6mwa/drpod/internal/app/model"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var (
	listHeaders = []string{"Slug", "Urn", "Feed", "Last build", "Items", "Size"}
	listAligns  = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
)

// listRows describes the feed on disk of every podcast. A feed that
// cannot be parsed is reported as corrupt.
func listRows(cfg *model.Config, podcasts []model.Podcast) [][]string {
	rows := make([][]string, 0, len(podcasts))
	for _, p := range podcasts {
		status, err := generator.ReadFeedInfo(cfg.FeedPath(p.Slug))
		switch {
		case err == nil:
			rows = append(rows, []string{p.Slug, p.Urn, "yes", status.LastBuildDate, strconv.Itoa(status.Items), humanreadable.IEC(status.Size)})
		case errors.Is(err, os.ErrNotExist):
			rows = append(rows, []string{p.Slug, p.Urn, "no", "", "", ""})
		default:
			rows = append(rows, []string{p.Slug, p.Urn, "corrupt", "", "", ""})
		}
	}
	return rows
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
