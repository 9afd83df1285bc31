// Package format provides small presentation helpers shared by the
// report writers and log messages.
package format

import "fmt"

// SizeMB renders a size reported in KB as megabytes, e.g. "14.6MB".
func SizeMB(sizeKB int) string {
	return fmt.Sprintf("%.1fMB", float64(sizeKB)/1024)
}

// MBToKB converts a whole-megabyte cap to the KB unit the forge reports
// repository sizes in.
func MBToKB(mb int) int {
	return mb * 1024
}
