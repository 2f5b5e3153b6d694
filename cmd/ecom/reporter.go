package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

type cliReporter struct{}

func (cliReporter) Section(heading string) {
	fmt.Fprintf(os.Stdout, "=== %s ===\n", heading)
}

func (cliReporter) Table(columns []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (cliReporter) Error(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
