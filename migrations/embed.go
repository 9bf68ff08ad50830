// Package migrations embeds the relational schema migrations applied at
// startup.
package migrations

import "embed"

// FS holds the .up.sql migration files.
//
//go:embed *.up.sql
var FS embed.FS
