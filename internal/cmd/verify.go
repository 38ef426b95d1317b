package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Alia5/monobind/bindings"
	"github.com/Alia5/monobind/internal/version"
	"github.com/Alia5/monobind/manifest"
)

var ErrStaleManifest = errors.New("manifest does not match the binding sets")

type Verify struct {
	Manifest string   `arg:"" help:"Manifest written by generate --manifest" type:"existingfile"`
	Sets     []string `name:"set" help:"Binding set the manifest was generated from; repeatable (default: all registered)" env:"MONOBIND_SETS"`
}

// Run is called by Kong when the verify command is executed.
func (v *Verify) Run(logger *slog.Logger) error {
	want, err := manifest.Read(v.Manifest)
	if err != nil {
		return err
	}
	sets, err := bindings.Resolve(v.Sets)
	if err != nil {
		return err
	}
	e, err := describe(io.Discard, sets, logger, nil, false)
	if err != nil {
		return err
	}
	got := manifest.FromEmitter(e, version.String())

	layout := manifest.DiffBlocks(want, got)
	if got.Fingerprint == want.Fingerprint && len(layout) == 0 {
		logger.Info("Manifest is current", "path", v.Manifest, "fingerprint", got.Fingerprint)
		return nil
	}

	onlyWant, onlyGot := manifest.Diff(want, got)
	logger.Warn("Manifest is stale",
		"path", v.Manifest,
		"manifestFingerprint", want.Fingerprint,
		"fingerprint", got.Fingerprint,
		"removed", onlyWant,
		"added", onlyGot,
		"layout", layout)

	var detail []string
	if len(onlyWant) > 0 {
		detail = append(detail, "removed "+strings.Join(onlyWant, ", "))
	}
	if len(onlyGot) > 0 {
		detail = append(detail, "added "+strings.Join(onlyGot, ", "))
	}
	detail = append(detail, layout...)
	if len(detail) == 0 {
		detail = append(detail, "signatures changed")
	}
	return fmt.Errorf("%w: %s", ErrStaleManifest, strings.Join(detail, "; "))
}
