package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/specialistvlad/metagrid/internal/engine"
	"github.com/specialistvlad/metagrid/internal/value"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("3"))
)

// Render writes res to w as a table or as a JSON object.
func Render(w io.Writer, res *engine.Result, format string) error {
	switch format {
	case OutputJSON:
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case OutputTable, "":
		_, err := fmt.Fprintln(w, renderTable(res))
		return err
	default:
		return fmt.Errorf("unknown output format '%s'", format)
	}
}

func renderTable(res *engine.Result) string {
	var rows [][]string
	for _, e := range res.Entries() {
		if strings.HasSuffix(e.Name, engine.TimeSuffix) {
			continue
		}
		elapsed := ""
		if t, ok := res.Get(e.Name + engine.TimeSuffix); ok {
			elapsed = t.String()
		}
		rows = append(rows, []string{e.Name, e.Value.String(), elapsed})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metafeature", "Value", "Seconds").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(rows) && isWarning(res, rows[row][0]) {
				return warningStyle
			}
			return cellStyle
		}).
		String()
}

func isWarning(res *engine.Result, name string) bool {
	v, _ := res.Get(name)
	return v.Tag() == value.TagSentinel || v.Tag() == value.TagFailure
}
