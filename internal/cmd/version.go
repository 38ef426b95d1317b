package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Alia5/monobind/internal/version"
)

type VersionCmd struct{}

// Run is called by Kong when the version command is executed.
func (v *VersionCmd) Run() error {
	return v.Print(os.Stdout)
}

func (v *VersionCmd) Print(w io.Writer) error {
	ver, err := version.GetVersion()
	if err != nil {
		return err
	}
	line := "monobind " + ver
	if rev := version.Revision(); rev != "" {
		line += " (" + rev + ")"
	}
	_, err = fmt.Fprintf(w, "%s %s/%s\n", line, runtime.GOOS, runtime.GOARCH)
	return err
}
