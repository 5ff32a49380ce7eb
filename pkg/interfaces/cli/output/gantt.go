package output

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/vsinha/echelon/pkg/application/dto"
	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// echelonColors is indexed by the sender's low-level code
var echelonColors = []string{"#4CAF50", "#2196F3", "#FF9800", "#9C27B0", "#795548"}

// ShipmentGantt lays shipments out as bars from release to arrival, one row
// per lane
type ShipmentGantt struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartPeriod  entities.Period
	EndPeriod    entities.Period
}

// GanttBar represents a single shipment in the chart
type GanttBar struct {
	Shipment supplychain.Shipment
	X        int
	Width    int
	Color    string
}

type lane struct {
	from, to entities.NodeID
}

func (l lane) String() string {
	return fmt.Sprintf("%s → %s", l.from, l.to)
}

// NewShipmentGantt sizes a chart for the result's shipments
func NewShipmentGantt(result *dto.SimulationResult) *ShipmentGantt {
	if len(result.Shipments) == 0 {
		return &ShipmentGantt{
			Width:        800,
			Height:       200,
			MarginLeft:   150,
			MarginTop:    50,
			MarginRight:  50,
			MarginBottom: 50,
			RowHeight:    25,
		}
	}

	start := result.StartPeriod
	end := result.EndPeriod + 1
	lanes := make(map[lane]bool)
	for _, s := range result.Shipments {
		start = min(start, s.Period)
		end = max(end, s.Arrival())
		lanes[lane{s.From, s.To}] = true
	}

	rowHeight := 30
	return &ShipmentGantt{
		Width:        1200,
		Height:       len(lanes)*rowHeight + 170,
		MarginLeft:   200,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		StartPeriod:  start,
		EndPeriod:    end,
	}
}

// GenerateSVG creates an SVG representation of the chart
func (g *ShipmentGantt) GenerateSVG(result *dto.SimulationResult) string {
	if len(result.Shipments) == 0 {
		return g.generateEmptyChart()
	}

	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, g.Width, g.Height)
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.lane-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.shipment-bar { stroke: #333; stroke-width: 1; fill-opacity: 0.8; }`)
	svg.WriteString(`.shipment-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, g.Width, g.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">Shipments - %s</text>`,
		g.Width/2, html.EscapeString(result.Scenario))

	llc := make(map[entities.NodeID]int)
	for _, s := range result.States {
		llc[s.Node] = s.LLC
	}

	rows := g.organizeBars(g.createBars(result.Shipments, llc))
	lanes := sortedLanes(rows)

	g.drawTimeAxis(&svg, len(lanes))
	g.drawLaneRows(&svg, lanes, rows)
	g.drawLegend(&svg, llc)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (g *ShipmentGantt) periodX(p entities.Period) int {
	chartWidth := g.Width - g.MarginLeft - g.MarginRight
	span := g.EndPeriod - g.StartPeriod
	if span <= 0 {
		span = 1
	}
	return g.MarginLeft + int(float64(p-g.StartPeriod)/float64(span)*float64(chartWidth))
}

func (g *ShipmentGantt) createBars(shipments []supplychain.Shipment, llc map[entities.NodeID]int) []GanttBar {
	bars := make([]GanttBar, 0, len(shipments))
	for _, s := range shipments {
		x := g.periodX(s.Period)
		width := g.periodX(s.Arrival()) - x
		if width < 2 {
			width = 2
		}
		bars = append(bars, GanttBar{
			Shipment: s,
			X:        x,
			Width:    width,
			Color:    echelonColors[llc[s.From]%len(echelonColors)],
		})
	}
	return bars
}

// organizeBars groups bars by lane, ordered by release period
func (g *ShipmentGantt) organizeBars(bars []GanttBar) map[lane][]GanttBar {
	rows := make(map[lane][]GanttBar)
	for _, bar := range bars {
		key := lane{bar.Shipment.From, bar.Shipment.To}
		rows[key] = append(rows[key], bar)
	}
	for key := range rows {
		sort.SliceStable(rows[key], func(i, j int) bool {
			return rows[key][i].Shipment.Period < rows[key][j].Shipment.Period
		})
	}
	return rows
}

// sortedLanes orders lanes by first shipment, then name
func sortedLanes(rows map[lane][]GanttBar) []lane {
	lanes := make([]lane, 0, len(rows))
	for l := range rows {
		lanes = append(lanes, l)
	}
	sort.Slice(lanes, func(i, j int) bool {
		pi, pj := rows[lanes[i]][0].Shipment.Period, rows[lanes[j]][0].Shipment.Period
		if pi != pj {
			return pi < pj
		}
		return lanes[i].String() < lanes[j].String()
	})
	return lanes
}

// drawTimeAxis labels periods and draws vertical grid lines
func (g *ShipmentGantt) drawTimeAxis(svg *strings.Builder, numRows int) {
	gridBottom := g.MarginTop + numRows*g.RowHeight
	axisY := gridBottom + 20

	step := entities.Period(1)
	if span := g.EndPeriod - g.StartPeriod; span > 40 {
		step = span / 20
	}

	for p := g.StartPeriod; p <= g.EndPeriod; p += step {
		x := g.periodX(p)
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, g.MarginTop, x, gridBottom)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%d</text>`, x, axisY, p)
	}

	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		g.MarginLeft, gridBottom, g.Width-g.MarginRight, gridBottom)
}

func (g *ShipmentGantt) drawLaneRows(svg *strings.Builder, lanes []lane, rows map[lane][]GanttBar) {
	for i, l := range lanes {
		y := g.MarginTop + i*g.RowHeight

		fmt.Fprintf(svg, `<text x="%d" y="%d" class="lane-label" text-anchor="end">%s</text>`,
			g.MarginLeft-15, y+g.RowHeight/2+4, html.EscapeString(l.String()))
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			g.MarginLeft, y+g.RowHeight, g.Width-g.MarginRight, y+g.RowHeight)

		for _, bar := range rows[l] {
			g.drawBar(svg, bar, y)
		}
	}
}

func (g *ShipmentGantt) drawBar(svg *strings.Builder, bar GanttBar, rowY int) {
	barHeight := g.RowHeight - 4
	barY := rowY + 2
	s := bar.Shipment

	fmt.Fprintf(svg, `<g><rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="shipment-bar"/>`,
		bar.X, barY, bar.Width, barHeight, bar.Color)

	if bar.Width > 30 {
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="shipment-text" text-anchor="middle">%d</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, s.Quantity)
	}

	fmt.Fprintf(svg, `<title>%s, Qty: %d, Shipped: %d, Arrives: %d</title></g>`,
		html.EscapeString(lane{s.From, s.To}.String()), s.Quantity, s.Period, s.Arrival())
}

// drawLegend lists the colors of the echelons that shipped
func (g *ShipmentGantt) drawLegend(svg *strings.Builder, llc map[entities.NodeID]int) {
	levels := make(map[int]bool)
	for _, l := range llc {
		levels[l] = true
	}
	codes := make([]int, 0, len(levels))
	for l := range levels {
		codes = append(codes, l)
	}
	sort.Ints(codes)

	legendX := g.Width - g.MarginRight - 150
	legendY := g.Height - g.MarginBottom + 10

	for i, code := range codes {
		itemX := legendX - (len(codes)-1-i)*110
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`,
			itemX, legendY, echelonColors[code%len(echelonColors)])
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">Shipped from LLC %d</text>`,
			itemX+18, legendY+8, code)
	}
}

// generateEmptyChart creates an empty chart when nothing shipped
func (g *ShipmentGantt) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Shipments</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, g.Width, g.Height, g.Width, g.Height, g.Width/2, g.Height/2)
}
