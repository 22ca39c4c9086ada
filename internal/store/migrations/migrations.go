// Package migrations embeds the SQL migration files for the app-owned
// chat/message mirror.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
