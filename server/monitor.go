package server

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

const (
	// gpuQueryTimeout bounds the nvidia-smi probe so a wedged driver cannot
	// stall the snapshot path.
	gpuQueryTimeout = 400 * time.Millisecond

	megabyte = 1 << 20
	gigabyte = 1 << 30
)

// Monitor collects one metrics.Snapshot per call. Network and disk speeds
// are deltas between consecutive samples, so the first call after startup
// reports zero rates.
type Monitor struct {
	mu           sync.Mutex
	lastSample   time.Time
	lastNetSent  uint64
	lastNetRecv  uint64
	lastDiskRead uint64
	lastDiskWrit uint64
}

// NewMonitor creates a Monitor primed with an initial counter sample.
func NewMonitor() *Monitor {
	m := &Monitor{lastSample: time.Now()}
	if counters, err := gnet.IOCounters(false); err == nil && len(counters) > 0 {
		m.lastNetSent = counters[0].BytesSent
		m.lastNetRecv = counters[0].BytesRecv
	}
	if io, err := disk.IOCounters(); err == nil {
		read, write := sumDiskIO(io)
		m.lastDiskRead = read
		m.lastDiskWrit = write
	}
	return m
}

// Snapshot collects every metric section. Individual sections fail soft
// (zero values, GPU marked unavailable) so one missing source never takes
// the whole endpoint down.
func (m *Monitor) Snapshot(ctx context.Context) (*metrics.Snapshot, error) {
	now := time.Now()
	snap := &metrics.Snapshot{
		Timestamp: now.Format("2006-01-02 15:04:05"),
	}

	snap.CPU = m.collectCPU()
	snap.Memory = collectMemory()
	snap.GPU = collectGPU(ctx)
	snap.System = collectSystem()
	snap.Network, snap.Disk = m.collectRates(now)

	return snap, nil
}

func (m *Monitor) collectCPU() metrics.CPU {
	out := metrics.CPU{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		out.Percent = round1(metrics.ClampPercent(percents[0]))
	}
	if n, err := cpu.Counts(false); err == nil {
		out.CoresPhysical = n
	}
	if n, err := cpu.Counts(true); err == nil {
		out.CoresLogical = n
	}
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		out.FrequencyMHz = info[0].Mhz
	}
	if t := cpuTemperature(); t != nil {
		out.TemperatureC = t
	}
	return out
}

// cpuTemperature returns the first plausible thermal sensor reading, or nil
// when the host exposes none.
func cpuTemperature() *float64 {
	readings, err := sensors.SensorsTemperatures()
	if err != nil {
		return nil
	}
	for _, r := range readings {
		if r.Temperature > 0 {
			t := round1(r.Temperature)
			return &t
		}
	}
	return nil
}

func collectMemory() metrics.Memory {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return metrics.Memory{}
	}
	return metrics.Memory{
		Percent:     round1(metrics.ClampPercent(vm.UsedPercent)),
		UsedGB:      toGB(vm.Used),
		TotalGB:     toGB(vm.Total),
		AvailableGB: toGB(vm.Available),
	}
}

// collectGPU probes nvidia-smi. Hosts without the binary (or without a GPU)
// report available=false rather than an error.
func collectGPU(ctx context.Context) metrics.GPU {
	queryCtx, cancel := context.WithTimeout(ctx, gpuQueryTimeout)
	defer cancel()

	out, err := exec.CommandContext(queryCtx, "nvidia-smi",
		"--query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil || len(out) == 0 {
		return metrics.GPU{Available: false}
	}

	var devices []metrics.GPUDevice
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 5 {
			continue
		}

		memUsed := parseFloat(parts[2])
		memTotal := parseFloat(parts[3])
		memPercent := 0.0
		if memTotal > 0 {
			memPercent = round1(memUsed / memTotal * 100)
		}

		dev := metrics.GPUDevice{
			Name:          strings.TrimSpace(parts[0]),
			Load:          round1(metrics.ClampPercent(parseFloat(parts[1]))),
			MemoryPercent: metrics.ClampPercent(memPercent),
		}
		if t := parseFloat(parts[4]); t > 0 {
			dev.TemperatureC = &t
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return metrics.GPU{Available: false}
	}
	return metrics.GPU{Available: true, Devices: devices}
}

func collectSystem() metrics.System {
	info, err := host.Info()
	if err != nil {
		return metrics.System{}
	}
	return metrics.System{
		Hostname:        info.Hostname,
		UptimeFormatted: formatUptime(info.Uptime),
	}
}

// formatUptime renders seconds as "H:MM:SS" with a day prefix past 24h,
// e.g. "2 days, 3:04:05".
func formatUptime(seconds uint64) string {
	days := seconds / 86400
	rem := seconds % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, (rem%3600)/60, rem%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}

// collectRates computes network and disk throughput from counter deltas
// since the previous sample, then refreshes the baseline.
func (m *Monitor) collectRates(now time.Time) (metrics.Network, metrics.Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := now.Sub(m.lastSample).Seconds()

	var network metrics.Network
	if counters, err := gnet.IOCounters(false); err == nil && len(counters) > 0 {
		if elapsed > 0 {
			network.SendSpeedKBps = round1(counterDelta(counters[0].BytesSent, m.lastNetSent) / elapsed / 1024)
			network.RecvSpeedKBps = round1(counterDelta(counters[0].BytesRecv, m.lastNetRecv) / elapsed / 1024)
		}
		m.lastNetSent = counters[0].BytesSent
		m.lastNetRecv = counters[0].BytesRecv
	}

	var diskOut metrics.Disk
	if io, err := disk.IOCounters(); err == nil {
		read, write := sumDiskIO(io)
		if elapsed > 0 {
			diskOut.IO.ReadSpeedMBps = round1(counterDelta(read, m.lastDiskRead) / elapsed / megabyte)
			diskOut.IO.WriteSpeedMBps = round1(counterDelta(write, m.lastDiskWrit) / elapsed / megabyte)
		}
		m.lastDiskRead = read
		m.lastDiskWrit = write
	}
	diskOut.Partitions = collectPartitions()

	m.lastSample = now
	return network, diskOut
}

func collectPartitions() []metrics.Partition {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil
	}

	var out []metrics.Partition
	for _, p := range parts {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		out = append(out, metrics.Partition{
			Mountpoint: p.Mountpoint,
			UsedGB:     toGB(usage.Used),
			TotalGB:    toGB(usage.Total),
			Percent:    round1(metrics.ClampPercent(usage.UsedPercent)),
		})
	}
	return out
}

func sumDiskIO(io map[string]disk.IOCountersStat) (read, write uint64) {
	for _, stat := range io {
		read += stat.ReadBytes
		write += stat.WriteBytes
	}
	return read, write
}

// counterDelta guards against counter resets, which would otherwise
// underflow the unsigned subtraction into an absurd rate.
func counterDelta(current, previous uint64) float64 {
	if current < previous {
		return 0
	}
	return float64(current - previous)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func toGB(bytes uint64) float64 {
	return round2(float64(bytes) / gigabyte)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
