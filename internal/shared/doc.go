// Package shared groups helpers used across packages. Its testutil
// subpackage provides the buffered slog handler used to assert diagnostics
// and the fixture workbooks written with excelize.
package shared
