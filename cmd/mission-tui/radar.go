package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

// sceneToScreen converts a local-frame (x, y) position in metres to a
// screen cell within a plotWidth x plotHeight grid spanning
// [minX,maxX] x [minY,maxY]. Re-derived from the teacher's
// radarToScreen (cmd/tui-viewfinder/radar.go): that function maps a
// polar (distance, bearing) pair onto a terminal grid with a 2:1
// character aspect-ratio correction; this one maps a flat Cartesian
// pair directly. The aspectRatio*2 factor on the column is 1, so no
// aspect-ratio correction is applied: x spans the full usable width
// and y the full usable height.
func sceneToScreen(x, y, minX, maxX, minY, maxY float64) (int, int, bool) {
	const aspectRatio = 0.5

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	usableWidth := float64(plotWidth - 2)
	usableHeight := float64(plotHeight - 2)

	fracX := (x - minX) / spanX
	fracY := (y - minY) / spanY

	col := int(fracX*usableWidth*aspectRatio*2) + 1
	row := plotHeight - 2 - int(fracY*usableHeight) + 1

	if col < 0 || col >= plotWidth || row < 0 || row >= plotHeight {
		return 0, 0, false
	}
	return col, row, true
}

// sceneBounds returns the bounding box of every waypoint in draft and
// others, padded by 10% so paths don't touch the plot border.
func sceneBounds(draft *mission.Mission, others []*mission.Mission) (minX, maxX, minY, maxY float64) {
	first := true
	consider := func(wp mission.Waypoint) {
		if first {
			minX, maxX, minY, maxY = wp.X, wp.X, wp.Y, wp.Y
			first = false
			return
		}
		if wp.X < minX {
			minX = wp.X
		}
		if wp.X > maxX {
			maxX = wp.X
		}
		if wp.Y < minY {
			minY = wp.Y
		}
		if wp.Y > maxY {
			maxY = wp.Y
		}
	}

	for _, wp := range draft.Waypoints {
		consider(wp)
	}
	for _, o := range others {
		for _, wp := range o.Waypoints {
			consider(wp)
		}
	}

	if first {
		return 0, 100, 0, 100
	}

	padX := (maxX-minX)*0.1 + 1
	padY := (maxY-minY)*0.1 + 1
	return minX - padX, maxX + padX, minY - padY, maxY + padY
}

// renderPlot draws an ASCII top-down (x, y) view of the draft
// mission's path, every other scheduled flight's path, and any
// reported conflict locations.
func renderPlot(draft *mission.Mission, others []*mission.Mission, conflicts []mission.Conflict) string {
	grid := make([][]rune, plotHeight)
	for i := range grid {
		grid[i] = make([]rune, plotWidth)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	minX, maxX, minY, maxY := sceneBounds(draft, others)

	plotPath := func(wps []mission.Waypoint, mark rune) {
		for _, wp := range wps {
			if col, row, ok := sceneToScreen(wp.X, wp.Y, minX, maxX, minY, maxY); ok {
				grid[row][col] = mark
			}
		}
	}

	for _, o := range others {
		plotPath(o.Waypoints, '.')
	}
	plotPath(draft.Waypoints, '*')

	for _, c := range conflicts {
		if col, row, ok := sceneToScreen(c.Location.X, c.Location.Y, minX, maxX, minY, maxY); ok {
			grid[row][col] = 'X'
		}
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	conflictStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	primaryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	otherStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	var b strings.Builder
	b.WriteString(borderStyle.Render("┌" + strings.Repeat("─", plotWidth-2) + "┐") + "\n")
	for _, row := range grid {
		b.WriteString(borderStyle.Render("│"))
		for _, cell := range row {
			switch cell {
			case 'X':
				b.WriteString(conflictStyle.Render("X"))
			case '*':
				b.WriteString(primaryStyle.Render("*"))
			case '.':
				b.WriteString(otherStyle.Render("."))
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString(borderStyle.Render("│") + "\n")
	}
	b.WriteString(borderStyle.Render("└" + strings.Repeat("─", plotWidth-2) + "┘"))

	b.WriteString("\n" + primaryStyle.Render("* ") + "draft mission   " +
		otherStyle.Render(". ") + "scheduled flights   " +
		conflictStyle.Render("X ") + "conflict")

	return b.String()
}
