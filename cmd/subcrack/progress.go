package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/shabbyrobe/subcrack"
)

type progressPrinter struct {
	w          io.Writer
	showChain  bool
	styled     bool
	iterStyle  lipgloss.Style
	scoreStyle lipgloss.Style
}

// newProgressPrinter styles its output only when f is a terminal.
func newProgressPrinter(f *os.File, showChain bool) *progressPrinter {
	styled := f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	return &progressPrinter{
		w:          f,
		showChain:  showChain,
		styled:     styled,
		iterStyle:  lipgloss.NewStyle().Bold(true).Width(7).Align(lipgloss.Right),
		scoreStyle: lipgloss.NewStyle().Faint(true),
	}
}

func (p *progressPrinter) report(pr subcrack.Progress) {
	fmt.Fprintln(p.w, p.format(pr))
}

func (p *progressPrinter) format(pr subcrack.Progress) string {
	iter := fmt.Sprintf("%d", pr.Iteration)
	score := fmt.Sprintf("%.1f", pr.BestScore)
	if p.styled {
		iter = p.iterStyle.Render(iter)
		score = p.scoreStyle.Render(score)
	}
	if p.showChain {
		return fmt.Sprintf("[%d] %s:\t%s\t%s", pr.Chain, iter, score, pr.Sample)
	}
	return fmt.Sprintf("%s:\t%s\t%s", iter, score, pr.Sample)
}
