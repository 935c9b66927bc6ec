package assets

import "embed"

// AssetsFS holds the stylesheet and images served under /assets/.
// css/output.css is produced by "go run ./cmd/do gen".
//
//go:embed css img
var AssetsFS embed.FS
