package executor

import "context"

// GPUPool hands out exclusive GPU leases to concurrent runs. A run holds
// its lease for the entire lifetime of its subprocess, so two runs can
// never share a device.
type GPUPool struct {
	leases chan string
}

// NewGPUPool creates a pool over the given device identifiers. With no
// devices configured the pool degrades to a single lease on device "0",
// matching the CLI's single-GPU default and serializing all runs. An empty
// lease never reaches the trainer's --gpu value.
func NewGPUPool(ids []string) *GPUPool {
	if len(ids) == 0 {
		ids = []string{"0"}
	}
	leases := make(chan string, len(ids))
	for _, id := range ids {
		leases <- id
	}
	return &GPUPool{leases: leases}
}

// Acquire blocks until a device is free or the context is canceled.
func (p *GPUPool) Acquire(ctx context.Context) (string, error) {
	select {
	case id := <-p.leases:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Release returns a device to the pool.
func (p *GPUPool) Release(id string) {
	p.leases <- id
}

// Size reports the number of devices in the pool.
func (p *GPUPool) Size() int {
	return cap(p.leases)
}
