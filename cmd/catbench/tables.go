// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Padding(1, 2, 1, 2)
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	cellStyle = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	failStyle = cellStyle.
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true)
)

// resultsTable renders one row per result. The first result is the baseline for the speedup column.
func resultsTable(results []*result, matches bool) *lgtable.Table {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("Executor", "Runs", "Mean", "Best", "Throughput", "Speedup", "Output").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 {
				return headerRowStyle
			}
			if col == 6 && !matches && row > 0 {
				return failStyle
			}
			if col == 0 {
				return cellStyle.Align(lipgloss.Left)
			}
			return cellStyle.Align(lipgloss.Right)
		})
	baseline := results[0].best()
	for i, r := range results {
		speedup := "-"
		if i > 0 && r.best() > 0 {
			speedup = fmt.Sprintf("%.2fx", float64(baseline)/float64(r.best()))
		}
		status := "reference"
		if i > 0 {
			status = "identical"
			if !matches {
				status = "DIFFERENT"
			}
		}
		table.Row(
			r.name,
			humanize.Comma(int64(len(r.durations))),
			r.mean().String(),
			r.best().String(),
			humanize.Bytes(uint64(r.bytesPerSecond()))+"/s",
			speedup,
			status,
		)
	}
	return table
}
