// Package migrations embeds the SQL schema of the embedded backend.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
