// Package registry links every built-in binding set into the binary.
package registry

import (
	_ "github.com/Alia5/monobind/bindings/demo" // Register the demo physics set
)
