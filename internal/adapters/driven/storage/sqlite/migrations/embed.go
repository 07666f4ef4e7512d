// Package migrations embeds the SQL schema files for the SQLite store.
package migrations

import "embed"

// FS holds the numbered migration files, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
