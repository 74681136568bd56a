package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/magicaleks/sysmon/internal/view"
	"github.com/spf13/cobra"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
)

var (
	styleOK    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleTitle = lipgloss.NewStyle().Bold(true)
	styleLabel = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

var styleCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGray).
	Padding(0, 1)

// sparkBlocks is the 8-level block character set for sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// usageColor maps a percentage to green, yellow (>=70) or red (>=90).
func usageColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 90:
		return colorRed
	case percent >= 70:
		return colorYellow
	default:
		return colorGreen
	}
}

// renderSparkline draws the last width values scaled to 0..100, left-padded
// with spaces when fewer are available.
func renderSparkline(values []float64, width int, c lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		idx := int(v / 100 * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		sb.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(c).Render(sb.String())
}

func renderSummary(d *view.Data) string {
	row := func(label, value string) string {
		return styleLabel.Render(label) + value
	}
	pct := func(p float64) string {
		return lipgloss.NewStyle().Foreground(usageColor(p)).Render(fmt.Sprintf("%.1f%%", p))
	}

	lines := []string{
		styleTitle.Render(d.NodeName),
		row("System", fmt.Sprintf("%s %s (%s)", d.System, d.Release, d.Machine)),
		row("Version", d.Version),
		row("Processor", d.Processor),
		"",
		row("CPU", pct(d.CPUUsage)),
		row("Load", fmt.Sprintf("%.2f %.2f %.2f", d.CPULoad[0], d.CPULoad[1], d.CPULoad[2])),
		row("Memory", fmt.Sprintf("%s  %.0f / %.0f MB", pct(d.Memory.Percent), d.Memory.Used, d.Memory.Total)),
		row("Disk", fmt.Sprintf("%s  %.2f / %.2f GB", pct(d.Disk.Percent), d.Disk.Used, d.Disk.Total)),
		row("Network", fmt.Sprintf("%d B recv  %d B sent", d.Network.BytesRecv, d.Network.BytesSent)),
	}
	return styleCard.Render(strings.Join(lines, "\n"))
}

func logJSONCmd(cmd *cobra.Command, v any) error {
	m, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pj, err := prettyjson.Format(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pj)
	return nil
}

// LogError prints err in bold red on the command's error stream.
func LogError(cmd *cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "error: ")
	fmt.Fprintln(cmd.ErrOrStderr(), color.RedString(err.Error()))
}
