package catalog

import units "github.com/docker/go-units"

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count with 1024-based units, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	return units.CustomSize("%.4g %s", float64(n), 1024.0, sizeUnits)
}
