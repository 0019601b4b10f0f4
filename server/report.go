package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/store"
)

// reportIndexKey is the store key for the generated-report index.
const reportIndexKey = "reports"

// SeriesSummary aggregates one metric over the recorded window.
type SeriesSummary struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// Report is the generated document: per-metric aggregates over one recorded
// session. It replaces the upstream PDF rendering with a JSON summary; the
// download workflow is identical either way.
type Report struct {
	GeneratedAt string        `json:"generated_at"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	SampleCount int           `json:"sample_count"`
	Hostname    string        `json:"hostname"`
	CPUPercent  SeriesSummary `json:"cpu_percent"`
	MemPercent  SeriesSummary `json:"memory_percent"`
	NetSendKBps SeriesSummary `json:"net_send_kbps"`
	NetRecvKBps SeriesSummary `json:"net_recv_kbps"`
	DiskReadMB  SeriesSummary `json:"disk_read_mbps"`
	DiskWriteMB SeriesSummary `json:"disk_write_mbps"`
}

// ReportMeta is one entry in the persisted report index.
type ReportMeta struct {
	Filename    string `json:"filename"`
	GeneratedAt string `json:"generated_at"`
	SampleCount int    `json:"sample_count"`
}

// GenerateReport summarizes a recorded session into a report file under
// reportDir and returns the filename. Sessions with fewer than two samples
// cannot produce meaningful aggregates and are rejected.
func GenerateReport(session RecordedSession, reportDir string, st *store.Store) (string, error) {
	if len(session.Samples) < 2 {
		return "", fmt.Errorf("not enough data to generate report")
	}

	report := Report{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		SampleCount: len(session.Samples),
		Hostname:    session.Samples[0].System.Hostname,
	}

	report.CPUPercent = summarize(session.Samples, func(i int) float64 { return session.Samples[i].CPU.Percent })
	report.MemPercent = summarize(session.Samples, func(i int) float64 { return session.Samples[i].Memory.Percent })
	report.NetSendKBps = summarize(session.Samples, func(i int) float64 { return session.Samples[i].Network.SendSpeedKBps })
	report.NetRecvKBps = summarize(session.Samples, func(i int) float64 { return session.Samples[i].Network.RecvSpeedKBps })
	report.DiskReadMB = summarize(session.Samples, func(i int) float64 { return session.Samples[i].Disk.IO.ReadSpeedMBps })
	report.DiskWriteMB = summarize(session.Samples, func(i int) float64 { return session.Samples[i].Disk.IO.WriteSpeedMBps })

	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	filename := fmt.Sprintf("system_report_%s.json", time.Now().Format("20060102_150405"))
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(reportDir, filename), encoded, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if st != nil {
		appendReportIndex(st, ReportMeta{
			Filename:    filename,
			GeneratedAt: report.GeneratedAt,
			SampleCount: report.SampleCount,
		})
	}
	return filename, nil
}

// appendReportIndex records the new report in the persisted index. Index
// failures are non-fatal: the report file itself already exists.
func appendReportIndex(st *store.Store, meta ReportMeta) {
	index, err := store.GetTyped[[]ReportMeta](st, reportIndexKey)
	if err != nil || index == nil {
		index = &[]ReportMeta{}
	}
	updated := append(*index, meta)
	_ = store.SetTyped(st, reportIndexKey, &updated)
}

// summarize computes min/avg/max of one metric across the session.
func summarize(samples []metrics.Snapshot, at func(i int) float64) SeriesSummary {
	s := SeriesSummary{Min: at(0), Max: at(0)}
	var sum float64
	for i := range samples {
		v := at(i)
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = round2(sum / float64(len(samples)))
	s.Min = round2(s.Min)
	s.Max = round2(s.Max)
	return s
}
