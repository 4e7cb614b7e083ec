// Package registry hosts named MeanShift façades behind quota enforcement
// and per-model serialized access, adapted from the teacher's tenant
// manager: spec §5's "no operation may be called concurrently on the same
// façade" turns tenant.Tenant's quota/usage bookkeeping into a mutex that
// also guards every façade call, not just a counter.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/pkg/kde"
)

// Quota bounds a single named model's resource usage.
type Quota struct {
	MaxExemplars  int // <=0 means unlimited
	MaxDimensions int // <=0 means unlimited
	RateLimitQPS  int // <=0 means unlimited
}

// Usage tracks a model's current resource consumption and query rate.
type Usage struct {
	QueryCount    int64
	LastQueryTime time.Time
	qpsWindow     int64
	qpsWindowTime time.Time
}

// Model is one named façade plus its quota, usage, and the mutex that
// serializes every call into it per spec §5's single-threaded-per-façade
// contract.
type Model struct {
	Name      string
	Facade    *kde.Facade
	Quota     Quota
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.Mutex
}

// checkRateLimit enforces Quota.RateLimitQPS using the same one-second
// sliding-window counter as the teacher's tenant.Tenant.CheckRateLimit.
// Callers must hold m.mu.
func (m *Model) checkRateLimit() error {
	if m.Quota.RateLimitQPS <= 0 {
		return nil
	}
	now := time.Now()
	if now.Sub(m.Usage.qpsWindowTime) < time.Second {
		if m.Usage.qpsWindow >= int64(m.Quota.RateLimitQPS) {
			return kerr.New(kerr.InvalidParameter, "rate limit exceeded for model %q: %d qps (max %d)", m.Name, m.Usage.qpsWindow, m.Quota.RateLimitQPS)
		}
	} else {
		m.Usage.qpsWindow = 0
		m.Usage.qpsWindowTime = now
	}
	m.Usage.qpsWindow++
	return nil
}

// checkExemplarQuota and checkDimensionQuota enforce Quota against the
// façade's own current counts, read after the operation that grows them.
func (m *Model) checkExemplarQuota() error {
	if m.Quota.MaxExemplars > 0 && m.Facade.Exemplars() > m.Quota.MaxExemplars {
		return kerr.New(kerr.InvalidParameter, "model %q exceeds exemplar quota: %d > %d", m.Name, m.Facade.Exemplars(), m.Quota.MaxExemplars)
	}
	return nil
}

func (m *Model) checkDimensionQuota(dims int) error {
	if m.Quota.MaxDimensions > 0 && dims > m.Quota.MaxDimensions {
		return kerr.New(kerr.InvalidParameter, "model %q exceeds dimension quota: %d > %d", m.Name, dims, m.Quota.MaxDimensions)
	}
	return nil
}

// Do serializes f against the model's mutex, enforces the rate limit before
// running it, and records the query. Every registry-facing operation on a
// Model (SetData, Prob, Mode, Cluster, ...) goes through this single path so
// quota/rate-limit enforcement cannot be bypassed by a direct Facade call.
func (m *Model) Do(f func(*kde.Facade) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRateLimit(); err != nil {
		return err
	}
	if err := f(m.Facade); err != nil {
		return err
	}
	m.Usage.QueryCount++
	m.Usage.LastQueryTime = time.Now()
	m.UpdatedAt = m.Usage.LastQueryTime

	if dims, err := m.Facade.Features(); err == nil {
		if err := m.checkDimensionQuota(dims); err != nil {
			return err
		}
	}
	return m.checkExemplarQuota()
}

// DefaultQuota mirrors the registry-wide defaults in pkg/config.ModelsConfig.
func DefaultQuota() Quota {
	return Quota{MaxExemplars: 1_000_000, MaxDimensions: 4096, RateLimitQPS: 1000}
}

// Registry holds every named model, bounded by MaxModels.
type Registry struct {
	maxModels int

	mu     sync.RWMutex
	models map[string]*Model
}

// New creates an empty registry accepting at most maxModels named models.
func New(maxModels int) *Registry {
	return &Registry{maxModels: maxModels, models: make(map[string]*Model)}
}

// Create registers a new named model with the given façade parameters and
// quota. Fails if the name is taken or the registry is at capacity.
func (r *Registry) Create(name string, p kde.Params, quota Quota) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; exists {
		return nil, fmt.Errorf("model %q already exists", name)
	}
	if r.maxModels > 0 && len(r.models) >= r.maxModels {
		return nil, fmt.Errorf("registry at capacity: %d models (max %d)", len(r.models), r.maxModels)
	}

	f, err := kde.New(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	model := &Model{
		Name:      name,
		Facade:    f,
		Quota:     quota,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.models[name] = model
	return model, nil
}

// Get retrieves a named model.
func (r *Registry) Get(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	model, exists := r.models[name]
	if !exists {
		return nil, fmt.Errorf("model %q not found", name)
	}
	return model, nil
}

// Delete removes a named model.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; !exists {
		return fmt.Errorf("model %q not found", name)
	}
	delete(r.models, name)
	return nil
}

// List returns every hosted model.
func (r *Registry) List() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Model, 0, len(r.models))
	for _, model := range r.models {
		out = append(out, model)
	}
	return out
}

// Count returns the number of hosted models.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// UpdateQuota replaces a named model's quota.
func (r *Registry) UpdateQuota(name string, quota Quota) error {
	model, err := r.Get(name)
	if err != nil {
		return err
	}
	model.mu.Lock()
	defer model.mu.Unlock()
	model.Quota = quota
	model.UpdatedAt = time.Now()
	return nil
}
