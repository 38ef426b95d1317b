package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Alia5/monobind/bindings"
)

type List struct{}

// Run is called by Kong when the list command is executed.
func (l *List) Run() error {
	return l.Print(os.Stdout)
}

func (l *List) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tDESCRIPTION")
	for _, s := range bindings.List() {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name(), s.Description())
	}
	return tw.Flush()
}
