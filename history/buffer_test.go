package history

import (
	"fmt"
	"testing"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

// sampleAt builds a snapshot whose metric values encode the tick index so
// eviction order is checkable.
func sampleAt(i int) *metrics.Snapshot {
	return &metrics.Snapshot{
		Timestamp: fmt.Sprintf("10:00:%02d", i%60),
		CPU:       metrics.CPU{Percent: float64(i % 100)},
		Memory:    metrics.Memory{Percent: float64((i + 1) % 100)},
		Network: metrics.Network{
			SendSpeedKBps: float64(i),
			RecvSpeedKBps: float64(i * 2),
		},
		Disk: metrics.Disk{
			IO: metrics.DiskIO{ReadSpeedMBps: float64(i), WriteSpeedMBps: float64(i)},
		},
	}
}

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"explicit", 10, 10},
		{"zero falls back", 0, DefaultCapacity},
		{"negative falls back", -5, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.capacity)
			if got := b.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
			if b.Len() != 0 {
				t.Errorf("Len() = %d, want 0", b.Len())
			}
		})
	}
}

func TestAppendFillsAllCoreSeries(t *testing.T) {
	b := New(5)
	b.Append(sampleAt(1))

	for _, name := range []string{
		SeriesCPU, SeriesMemory, SeriesNetSend, SeriesNetRecv,
		SeriesDiskRead, SeriesDiskWrite,
	} {
		if got := len(b.Values(name)); got != 1 {
			t.Errorf("series %s has %d values, want 1", name, got)
		}
	}
	if got := len(b.Labels()); got != 1 {
		t.Errorf("Labels() has %d entries, want 1", got)
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	b := New(60)
	for i := 0; i < 70; i++ {
		b.Append(sampleAt(i))
	}

	if got := b.Len(); got != 60 {
		t.Fatalf("Len() = %d, want 60", got)
	}

	send := b.Values(SeriesNetSend)
	if send[0] != 10 {
		t.Errorf("oldest net_send = %v, want 10 (ticks 0-9 evicted)", send[0])
	}
	if send[len(send)-1] != 69 {
		t.Errorf("newest net_send = %v, want 69", send[len(send)-1])
	}

	labels := b.Labels()
	if len(labels) != 60 {
		t.Fatalf("Labels() has %d entries, want 60", len(labels))
	}
	if labels[0] != "10:00:10" {
		t.Errorf("oldest label = %q, want %q", labels[0], "10:00:10")
	}
}

func TestAppendClampsValues(t *testing.T) {
	b := New(5)
	b.Append(&metrics.Snapshot{
		Timestamp: "12:00:00",
		CPU:       metrics.CPU{Percent: 150},
		Memory:    metrics.Memory{Percent: -3},
		Network:   metrics.Network{SendSpeedKBps: -1},
	})

	if got := b.Values(SeriesCPU)[0]; got != 100 {
		t.Errorf("cpu clamped to %v, want 100", got)
	}
	if got := b.Values(SeriesMemory)[0]; got != 0 {
		t.Errorf("memory clamped to %v, want 0", got)
	}
	if got := b.Values(SeriesNetSend)[0]; got != 0 {
		t.Errorf("net_send clamped to %v, want 0", got)
	}
}

func TestGPUSeriesRegisteredOnDemand(t *testing.T) {
	b := New(5)

	// Two ticks without GPU telemetry.
	b.Append(sampleAt(0))
	b.Append(sampleAt(1))

	if vals := b.Values(GPULoadSeries(0)); vals != nil {
		t.Fatalf("gpu series exists before any GPU sample: %v", vals)
	}

	snap := sampleAt(2)
	snap.GPU = metrics.GPU{
		Available: true,
		Devices: []metrics.GPUDevice{
			{Name: "RTX 3080", Load: 42, MemoryPercent: 51},
		},
	}
	b.Append(snap)

	load := b.Values(GPULoadSeries(0))
	if len(load) != 1 || load[0] != 42 {
		t.Errorf("gpu0_load = %v, want [42]", load)
	}
	mem := b.Values(GPUMemorySeries(0))
	if len(mem) != 1 || mem[0] != 51 {
		t.Errorf("gpu0_mem = %v, want [51]", mem)
	}

	// Core series are still tick-aligned with each other.
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestValuesReturnsCopy(t *testing.T) {
	b := New(5)
	b.Append(sampleAt(7))

	vals := b.Values(SeriesCPU)
	vals[0] = 999

	if got := b.Values(SeriesCPU)[0]; got == 999 {
		t.Error("mutating the returned slice leaked into the buffer")
	}
}

func TestFallbackLabelWhenTimestampMissing(t *testing.T) {
	b := New(5)
	b.Append(&metrics.Snapshot{}) // no timestamp

	labels := b.Labels()
	if len(labels) != 1 || labels[0] == "" {
		t.Errorf("expected a generated label, got %v", labels)
	}
}

func TestViewIsImmutableCopy(t *testing.T) {
	b := New(5)
	b.Append(sampleAt(3))

	v := b.View()
	if got := v.Last(SeriesCPU); got != 3 {
		t.Errorf("View Last(cpu) = %v, want 3", got)
	}

	// Later appends must not show up in an already-taken view.
	b.Append(sampleAt(4))
	if got := len(v.Values(SeriesCPU)); got != 1 {
		t.Errorf("view grew after Append: len = %d, want 1", got)
	}
}

func TestViewLastEmptySeries(t *testing.T) {
	b := New(5)
	v := b.View()
	if got := v.Last(SeriesCPU); got != 0 {
		t.Errorf("Last on empty series = %v, want 0", got)
	}
}
