package cmd

import (
	"strconv"

	"shortplay-scraper/app/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable 渲染命令行表格，缺失的单元格补空
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
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

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// siteRows 站点列表的表格行，Cookie 只显示是否已配置
func siteRows(sites []model.Site) [][]string {
	rows := make([][]string, 0, len(sites))
	for _, s := range sites {
		cookie := "否"
		if s.Cookie != "" {
			cookie = "是"
		}
		enabled := "否"
		if s.Enabled {
			enabled = "是"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(s.ID), 10), s.Key, s.Name, s.BaseURL, enabled, s.Status, cookie,
		})
	}
	return rows
}
