// Package render draws a scan screen as a two column terminal table.
package render

import (
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/DipamJha/foodPro/internal/domain/scan"
)

// ScannerSlot stands in for the camera widget, which a terminal cannot host.
const ScannerSlot = "[ barcode scanner ]"

// Console renders screens for a terminal.
type Console struct {
	// Width caps the table width. If 0, the terminal width is used when the
	// writer is one.
	Width int
	// EnableColors toggles ANSI colors for messages and the action.
	EnableColors bool
}

// NewConsole creates a console renderer with colors enabled.
func NewConsole() *Console {
	return &Console{EnableColors: true}
}

// Render writes screen to w. The scan panel is the left column and the result
// panel the right one; the panel titles form the header.
func (c *Console) Render(screen scan.Screen, w io.Writer) error {
	if w == nil {
		return errors.New("nil writer")
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Options.SeparateRows = false
	tw.AppendHeader(table.Row{screen.Scan.Title, screen.Result.Title})

	left := c.scanCells(screen.Scan)
	right := c.resultCells(screen.Result)
	for i := 0; i < max(len(left), len(right)); i++ {
		tw.AppendRow(table.Row{cell(left, i), cell(right, i)})
	}

	if width := c.columnWidth(w); width > 0 {
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMax: width},
			{Number: 2, WidthMax: width},
		})
	}

	tw.Render()
	return nil
}

func (c *Console) scanCells(p scan.ScanPanel) []string {
	cells := []string{ScannerSlot}
	if p.Barcode != "" {
		cells = append(cells, scan.BarcodeLabel+" "+p.Barcode)
	}
	return cells
}

func (c *Console) resultCells(p scan.ResultPanel) []string {
	if p.Product == nil {
		if p.Message == scan.Prompt {
			return []string{c.color(p.Message, text.FgHiBlack)}
		}
		return []string{c.color(p.Message, text.FgRed)}
	}

	var cells []string
	for _, row := range p.Product.Rows() {
		cells = append(cells, row.Label+": "+row.Value)
	}
	if p.Product.Image.URL != "" {
		cells = append(cells, "Image: "+p.Product.Image.URL)
	}
	cells = append(cells, c.color("[ "+p.Product.Action+" ]", text.FgGreen))
	return cells
}

// columnWidth splits the available width between both columns, leaving room
// for borders and padding.
func (c *Console) columnWidth(w io.Writer) int {
	width := c.Width
	if width <= 0 {
		width = detectTerminalWidth(w)
	}
	if width <= 0 {
		return 0
	}
	per := (width - 7) / 2
	if per < 20 {
		per = 20
	}
	return per
}

func (c *Console) color(s string, col text.Color) string {
	if !c.EnableColors {
		return s
	}
	return text.Colors{col}.Sprint(s)
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// detectTerminalWidth returns the width of w if it is a terminal, or -1.
func detectTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return -1
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return -1
	}
	return width
}
