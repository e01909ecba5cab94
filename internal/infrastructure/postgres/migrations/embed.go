// Package migrations holds the schema migrations, embedded so binaries do
// not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
