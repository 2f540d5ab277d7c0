package sched

import "fmt"

// Resources is a three dimensional capacity: memory, CPU cores and
// accelerator count. It is a value type and is never mutated in place.
type Resources struct {
	RAM      int `yaml:"ram"`
	CPUCores int `yaml:"cpu_cores"`
	GPUCount int `yaml:"gpu_count"`
}

// NewResources creates a Resources value.
func NewResources(ram, cpuCores, gpuCount int) Resources {
	return Resources{RAM: ram, CPUCores: cpuCores, GPUCount: gpuCount}
}

// FitsWithin reports whether r can be satisfied by avail on every dimension.
// Equal values fit. Negative values are compared as plain integers.
func (r Resources) FitsWithin(avail Resources) bool {
	return r.RAM <= avail.RAM &&
		r.CPUCores <= avail.CPUCores &&
		r.GPUCount <= avail.GPUCount
}

// Add returns the componentwise sum of r and other.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		RAM:      r.RAM + other.RAM,
		CPUCores: r.CPUCores + other.CPUCores,
		GPUCount: r.GPUCount + other.GPUCount,
	}
}

// Subtract returns the componentwise difference r - other.
// The result is not clamped at zero.
func (r Resources) Subtract(other Resources) Resources {
	return Resources{
		RAM:      r.RAM - other.RAM,
		CPUCores: r.CPUCores - other.CPUCores,
		GPUCount: r.GPUCount - other.GPUCount,
	}
}

func (r Resources) String() string {
	return fmt.Sprintf("ram=%d cpu=%d gpu=%d", r.RAM, r.CPUCores, r.GPUCount)
}
