// Package metrics defines the wire-level data model shared between the
// collector service and the dashboard client. Field names and JSON tags
// follow the collector's /api/resources payload.
package metrics

// Snapshot is the complete resource payload returned by one successful poll
// of GET /api/resources, including the recording-session fields the server
// appends to every response.
type Snapshot struct {
	Timestamp string  `json:"timestamp"`
	CPU       CPU     `json:"cpu"`
	Memory    Memory  `json:"memory"`
	GPU       GPU     `json:"gpu"`
	Network   Network `json:"network"`
	Disk      Disk    `json:"disk"`
	System    System  `json:"system"`

	// Recording-session fields, authoritative on the server.
	Recording          bool    `json:"recording"`
	RecordingElapsed   float64 `json:"recording_elapsed"`
	RecordingRemaining float64 `json:"recording_remaining,omitempty"`
	RecordingDuration  float64 `json:"recording_duration"`
	RecordedCount      int     `json:"recorded_count"`
}

// CPU holds processor usage and topology.
type CPU struct {
	Percent       float64 `json:"percent"`
	CoresPhysical int     `json:"cores_physical"`
	CoresLogical  int     `json:"cores_logical"`
	FrequencyMHz  float64 `json:"frequency_current"`
	// TemperatureC is nil when the host exposes no thermal sensor.
	TemperatureC *float64 `json:"temperature"`
}

// Memory holds virtual memory usage.
type Memory struct {
	Percent     float64 `json:"percent"`
	UsedGB      float64 `json:"used_gb"`
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
}

// GPU holds the optional GPU section. Available is false when the collector
// has no GPU telemetry source, in which case Devices is empty.
type GPU struct {
	Available bool        `json:"available"`
	Devices   []GPUDevice `json:"gpus"`
}

// GPUDevice describes one GPU in collector enumeration order.
type GPUDevice struct {
	Name          string   `json:"name"`
	Load          float64  `json:"load"`
	MemoryPercent float64  `json:"memory_percent"`
	TemperatureC  *float64 `json:"temperature"`
}

// Network holds interface-aggregate transfer speeds in KB/s, computed by the
// collector from counter deltas between consecutive samples.
type Network struct {
	SendSpeedKBps float64 `json:"bytes_sent_speed"`
	RecvSpeedKBps float64 `json:"bytes_recv_speed"`
}

// Disk holds per-partition usage plus aggregate IO speeds.
type Disk struct {
	IO         DiskIO      `json:"io"`
	Partitions []Partition `json:"partitions"`
}

// DiskIO holds aggregate read/write speeds in MB/s.
type DiskIO struct {
	ReadSpeedMBps  float64 `json:"read_speed"`
	WriteSpeedMBps float64 `json:"write_speed"`
}

// Partition describes one mounted filesystem.
type Partition struct {
	Mountpoint string  `json:"mountpoint"`
	UsedGB     float64 `json:"used_gb"`
	TotalGB    float64 `json:"total_gb"`
	Percent    float64 `json:"percent"`
}

// System holds host identity information.
type System struct {
	Hostname        string `json:"hostname"`
	UptimeFormatted string `json:"uptime_formatted"`
}

// ClampPercent bounds a percentage to [0, 100]. The collector is expected to
// clamp at the source, but renderers must not rely on that.
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClampFraction bounds a ratio to [0, 1].
func ClampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
