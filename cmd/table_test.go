package cmd

import (
	"strings"
	"testing"

	"shortplay-scraper/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"x"}, {"y", "z"}}, nil)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.Contains(t, out, "x")
	assert.Contains(t, out, "z")
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}, nil))
}

func TestSiteRows_HidesCookie(t *testing.T) {
	rows := siteRows([]model.Site{
		{ID: 7, Key: "mteam", Name: "馒头", BaseURL: "https://kp.m-team.cc", Cookie: "uid=1; pass=secret", Enabled: true, Status: model.StatusActive},
		{ID: 8, Key: "hdsky", BaseURL: "https://hdsky.me", Status: model.StatusError},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"7", "mteam", "馒头", "https://kp.m-team.cc", "是", "active", "是"}, rows[0])
	assert.Equal(t, []string{"8", "hdsky", "", "https://hdsky.me", "否", "error", "否"}, rows[1])

	out := renderTable([]string{"ID", "标识", "名称", "地址", "启用", "状态", "Cookie"}, rows, []columnAlignment{alignRight})
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "hdsky")
}
