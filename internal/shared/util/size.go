package util

import "fmt"

// HumanSize renders a byte count with one decimal and a B/KB/MB/GB/TB unit,
// e.g. 2048 -> "2.0 KB".
func HumanSize(sizeBytes int64) string {
	size := float64(sizeBytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}
