// Package migrations embeds the schema files so tests and tooling can apply
// them without knowing where the repository lives on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
