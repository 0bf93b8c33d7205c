package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/horizon/internal/metrics"
)

// Gruvbox 色板，热力图按强度 0..4 取色。
var (
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")

	intensityColors = [5]lipgloss.Color{"#504945", "#b8bb26", "#98971a", "#79740e", "#8ec07c"}
	intensityGlyphs = [5]string{"·", "░", "▒", "▓", "█"}
	weekdayLabels   = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// painter 在非终端输出时不加 ANSI 颜色
type painter struct {
	color bool
}

func (p painter) render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func (p painter) header(text string) string {
	return p.render(lipgloss.NewStyle().Foreground(ColorHeader).Bold(true), text)
}

func (p painter) dim(text string) string {
	return p.render(lipgloss.NewStyle().Foreground(ColorDim), text)
}

func (p painter) cell(intensity int) string {
	level := max(0, min(intensity, len(intensityGlyphs)-1))
	return p.render(lipgloss.NewStyle().Foreground(intensityColors[level]), intensityGlyphs[level])
}

// RenderHeatmap 将热力图渲染为 7 行（周日到周六）的字符网格，首行为月份标签。
func RenderHeatmap(h metrics.Heatmap, color bool) string {
	p := painter{color: color}
	const prefix = "    "

	var b strings.Builder

	if len(h.MonthLabels) > 0 {
		line := []rune(strings.Repeat(" ", len(h.Weeks)*2))
		nextFree := 0
		for _, label := range h.MonthLabels {
			col := label.WeekIndex * 2
			if col < nextFree || col+len(label.Month) > len(line) {
				continue
			}
			copy(line[col:], []rune(label.Month))
			nextFree = col + len(label.Month) + 1
		}
		b.WriteString(strings.TrimRight(prefix+p.dim(string(line)), " "))
		b.WriteString("\n")
	}

	for slot := 0; slot < 7; slot++ {
		var row strings.Builder
		row.WriteString(p.dim(weekdayLabels[slot]) + " ")
		for _, week := range h.Weeks {
			day := week[slot]
			if day == nil {
				row.WriteString("  ")
				continue
			}
			row.WriteString(p.cell(day.Intensity) + " ")
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteString("\n")
	}

	unit := "days"
	if h.ActiveDays == 1 {
		unit = "day"
	}
	b.WriteString(fmt.Sprintf("\n%d active %s, %s focus\n", h.ActiveDays, unit, metrics.FormatMinutes(h.FocusMinutes)))
	return b.String()
}

// RenderTable 渲染对齐的表格，列宽按可见宽度计算。
func RenderTable(headers []string, rows [][]string, color bool) string {
	if len(headers) == 0 {
		return ""
	}
	p := painter{color: color}
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	writeRow := func(b *strings.Builder, cells []string, style func(string) string) {
		var line strings.Builder
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			line.WriteString(style(cell))
			if i < len(headers)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	var b strings.Builder
	writeRow(&b, headers, p.header)

	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("─", w)
	}
	writeRow(&b, separators, p.dim)

	for _, row := range rows {
		writeRow(&b, row, func(s string) string { return s })
	}
	return b.String()
}
