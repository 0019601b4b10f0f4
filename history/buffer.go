// Package history maintains the bounded rolling series that feed the
// dashboard's time-series charts. One Buffer owns every tracked series;
// all mutation happens through Append so the series stay tick-aligned.
package history

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

// DefaultCapacity is the number of samples each series retains: one minute
// of history at the one-second poll cadence.
const DefaultCapacity = 60

// Core series names. These receive one value on every successful tick.
const (
	SeriesCPU       = "cpu"
	SeriesMemory    = "memory"
	SeriesNetSend   = "net_send"
	SeriesNetRecv   = "net_recv"
	SeriesDiskRead  = "disk_read"
	SeriesDiskWrite = "disk_write"
)

// coreSeries is the fixed registration order for the always-present series.
var coreSeries = []string{
	SeriesCPU,
	SeriesMemory,
	SeriesNetSend,
	SeriesNetRecv,
	SeriesDiskRead,
	SeriesDiskWrite,
}

// GPULoadSeries returns the series name for device i's load history.
func GPULoadSeries(i int) string { return fmt.Sprintf("gpu%d_load", i) }

// GPUMemorySeries returns the series name for device i's memory history.
func GPUMemorySeries(i int) string { return fmt.Sprintf("gpu%d_mem", i) }

// Buffer is the set of rolling series. It is not safe for concurrent use;
// the poll loop is its only writer and readers receive copies via View.
type Buffer struct {
	capacity int
	labels   []string
	series   map[string][]float64
	order    []string

	// now is injectable for tests; Append falls back to it when the
	// snapshot carries no timestamp of its own.
	now func() time.Time
}

// New creates a Buffer with the given per-series capacity. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	b := &Buffer{
		capacity: capacity,
		series:   make(map[string][]float64, len(coreSeries)),
		now:      time.Now,
	}
	for _, name := range coreSeries {
		b.series[name] = nil
		b.order = append(b.order, name)
	}
	return b
}

// Append records one tick. Every core series receives exactly one value
// under a single shared label; GPU series receive values only when the
// snapshot reports GPU telemetry, so they may run shorter than the core
// series and must be aligned by trailing index.
func (b *Buffer) Append(snap *metrics.Snapshot) {
	label := snap.Timestamp
	if label == "" {
		label = b.now().Format("15:04:05")
	}

	b.labels = trimLabels(append(b.labels, label), b.capacity)

	b.push(SeriesCPU, metrics.ClampPercent(snap.CPU.Percent))
	b.push(SeriesMemory, metrics.ClampPercent(snap.Memory.Percent))
	b.push(SeriesNetSend, nonNegative(snap.Network.SendSpeedKBps))
	b.push(SeriesNetRecv, nonNegative(snap.Network.RecvSpeedKBps))
	b.push(SeriesDiskRead, nonNegative(snap.Disk.IO.ReadSpeedMBps))
	b.push(SeriesDiskWrite, nonNegative(snap.Disk.IO.WriteSpeedMBps))

	if snap.GPU.Available && len(snap.GPU.Devices) > 0 {
		for i, dev := range snap.GPU.Devices {
			b.push(GPULoadSeries(i), metrics.ClampPercent(dev.Load))
			b.push(GPUMemorySeries(i), metrics.ClampPercent(dev.MemoryPercent))
		}
	}
}

// push appends one value to the named series, registering it on first use,
// and evicts the oldest value once the series exceeds capacity.
func (b *Buffer) push(name string, v float64) {
	if _, ok := b.series[name]; !ok {
		b.order = append(b.order, name)
	}

	values := append(b.series[name], v)
	if len(values) > b.capacity {
		values = values[len(values)-b.capacity:]
	}
	b.series[name] = values
}

func trimLabels(labels []string, max int) []string {
	if len(labels) > max {
		return labels[len(labels)-max:]
	}
	return labels
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Len returns the number of retained ticks (the core series length).
func (b *Buffer) Len() int {
	return len(b.series[SeriesCPU])
}

// Capacity returns the per-series capacity.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Values returns a copy of the named series, oldest first. Unknown series
// return nil.
func (b *Buffer) Values(name string) []float64 {
	src, ok := b.series[name]
	if !ok || len(src) == 0 {
		return nil
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Labels returns a copy of the shared tick labels, oldest first.
func (b *Buffer) Labels() []string {
	if len(b.labels) == 0 {
		return nil
	}
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

// SeriesNames returns all registered series in registration order.
func (b *Buffer) SeriesNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}
