package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the topicflow ASCII banner, coloured when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Teal to indigo, one colour per line
	lines := []struct{ text, color string }{
		{" _              _       __ _", "#2dd4bf"},
		{"| |_ ___  _ __ (_) ___ / _| | _____      __", "#38bdf8"},
		{"| __/ _ \\| '_ \\| |/ __| |_| |/ _ \\ \\ /\\ / /", "#60a5fa"},
		{"| || (_) | |_) | | (__|  _| | (_) \\ V  V /", "#818cf8"},
		{" \\__\\___/| .__/|_|\\___|_| |_|\\___/ \\_/\\_/", "#a78bfa"},
		{"         |_|", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
