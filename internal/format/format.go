// Package format provides shared string formatting for the dashboard.
package format

import "fmt"

// MinSec renders a second count as "M:SS" (e.g. 150 -> "2:30").
// Negative values render as "0:00".
func MinSec(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Clock renders a capture-window position as "M:SS / M:SS"
// (e.g. 150, 300 -> "2:30 / 5:00").
func Clock(elapsedSec, durationSec float64) string {
	return MinSec(elapsedSec) + " / " + MinSec(durationSec)
}

// SpeedKB renders a KB/s rate, promoting to MB/s above 1024 KB/s.
func SpeedKB(kbps float64) string {
	if kbps < 0 {
		kbps = 0
	}
	if kbps >= 1024 {
		return fmt.Sprintf("%.1f MB/s", kbps/1024)
	}
	return fmt.Sprintf("%.1f KB/s", kbps)
}

// SpeedMB renders an MB/s rate.
func SpeedMB(mbps float64) string {
	if mbps < 0 {
		mbps = 0
	}
	return fmt.Sprintf("%.1f MB/s", mbps)
}

// UsedTotalGB renders a "used / total GB" pair (e.g. "7.8 / 16.0 GB").
func UsedTotalGB(usedGB, totalGB float64) string {
	return fmt.Sprintf("%.1f / %.1f GB", usedGB, totalGB)
}
