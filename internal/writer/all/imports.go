// Package all wires every built-in output backend into the writer
// factory.
//
// The package exists purely for side effects: importing it (even as a
// blank import) runs the init functions of the database backends,
// which register their factories with the writer package. The flat
// formats (jsonl, json, console, blackhole) live in the writer package
// itself and need no extra import.
//
// Importing this package makes the following formats available:
//
//   - "sqlite"   (internal/writer/sqlite)
//   - "postgres" (internal/writer/postgres)
//
// Typical usage, in cmd/dgkit or a similar wiring layer:
//
//	import (
//	    _ "github.com/jmfontaine/dgkit/internal/writer/all" // enable all backends
//
//	    "github.com/jmfontaine/dgkit/internal/writer"
//	)
//
//	w, err := writer.New(ctx, format, cfg)
//
// A binary that only needs one backend can blank-import that backend's
// package directly instead.
package all

import (
	_ "github.com/jmfontaine/dgkit/internal/writer/postgres"
	_ "github.com/jmfontaine/dgkit/internal/writer/sqlite"
)
