// Package migrations embarca o schema versionado aplicado pelo goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
