package appfs

import "embed"

// FS holds the goose migrations, one directory per database engine.
//
//go:embed migrations
var FS embed.FS
