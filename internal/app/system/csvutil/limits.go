// internal/app/system/csvutil/limits.go
package csvutil

// MaxExportRows caps a single export. One row per year keeps real exports
// far below this.
const MaxExportRows = 20000
