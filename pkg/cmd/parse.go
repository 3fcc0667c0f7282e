package cmd

import (
	"fmt"

	"github.com/svdgen/svdgen/pkg/model"
)

// Loader parses an SVD/YAML/JSON source file into a validated semantic
// Device tree. The core's contract (spec §1, §6) assumes this step has
// already happened — XML/YAML/JSON parsing is an external collaborator,
// not part of this module. A real CLI distribution registers a concrete
// Loader (e.g. an SVD XML decoder) here; without one, `generate`/`check`
// report a clear error rather than silently doing nothing.
type Loader func(path string) (*model.Device, error)

// RegisteredLoader is consulted by the `generate` and `check` subcommands.
// It is nil in this core module; callers embedding pkg/cmd in a full
// distribution assign it during program initialization.
var RegisteredLoader Loader

func loadDevice(path string) (*model.Device, error) {
	if RegisteredLoader == nil {
		return nil, fmt.Errorf("no SVD/YAML/JSON loader registered: parsing %q is outside the core's scope (spec §1); " +
			"link a concrete cmd.RegisteredLoader before calling Execute", path)
	}

	return RegisteredLoader(path)
}
