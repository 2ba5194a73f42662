// Package migrations embeds the sqlite schema migrations so the binary can
// bring any database file up to date at boot.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
