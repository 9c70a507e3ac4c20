package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/anvil/internal/app"
	"go.trai.ch/anvil/internal/ui/style"
)

func (c *CLI) newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [base]",
		Short: "List published NeoForge releases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.VersionsOptions{Options: c.opts}
			if len(args) == 1 {
				opts.Base = args[0]
			}

			report, err := c.app.Versions(cmd.Context(), opts)
			if err != nil {
				return err
			}
			renderVersions(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

type versionStyles struct {
	header lipgloss.Style
	base   lipgloss.Style
	dim    lipgloss.Style
	stable lipgloss.Style
	beta   lipgloss.Style
}

func newVersionStyles(w io.Writer) versionStyles {
	r := lipgloss.NewRenderer(w)
	return versionStyles{
		header: r.NewStyle().Bold(true).Foreground(style.Ember),
		base:   r.NewStyle().Bold(true).Width(10),
		dim:    r.NewStyle().Foreground(style.Slate),
		stable: r.NewStyle().Foreground(style.Green),
		beta:   r.NewStyle().Foreground(style.Yellow),
	}
}

func renderVersions(w io.Writer, report app.VersionsReport) {
	s := newVersionStyles(w)

	if len(report.Releases) > 0 {
		for _, v := range report.Releases {
			marker := s.stable.Render(style.Check)
			if v.IsBeta() {
				marker = s.beta.Render(style.Warning)
			}
			star := ""
			if v == report.Recommended {
				star = " " + s.header.Render(style.Star)
			}
			_, _ = fmt.Fprintf(w, "%s %s%s\n", marker, v.VersionName(), star)
		}
		return
	}

	_, _ = fmt.Fprintln(w, s.header.Render("NeoForge releases"))
	_, _ = fmt.Fprintf(w, "%s %s\n", s.dim.Render("latest:     "), report.Latest.VersionName())
	if !report.Recommended.IsZero() {
		_, _ = fmt.Fprintf(w, "%s %s\n", s.dim.Render("recommended:"), report.Recommended.VersionName())
	}
	_, _ = fmt.Fprintln(w)

	for _, b := range report.Bases {
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			s.base.Render(b.Base),
			releaseLabel(s, b),
			s.dim.Render(fmt.Sprintf("(%d releases)", b.Count)),
		)
	}
}

func releaseLabel(s versionStyles, b app.BaseSummary) string {
	if b.Recommended.IsZero() {
		return s.beta.Render(b.Latest.Raw())
	}
	label := s.stable.Render(b.Recommended.Raw())
	if b.Latest != b.Recommended {
		label += s.dim.Render(" / ") + s.beta.Render(b.Latest.Raw())
	}
	return label
}
