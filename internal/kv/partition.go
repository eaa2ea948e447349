package kv

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrSnakeDoc/yangfinder/internal/logger"
)

// Deleter is implemented by stores that can drop a key.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Namespace returns the client part of a "<client>:<key>" key, or "" for an
// unprefixed key.
func Namespace(key string) string {
	ns, _, ok := strings.Cut(key, ":")
	if !ok {
		return ""
	}
	return ns
}

// PartitionOptions configures NewPartitioned.
type PartitionOptions struct {
	// Quota is the byte budget of one namespace, counted like Memory
	// counts it: len(key)+len(value) over the namespace's keys.
	Quota int
	// MaxPartitions bounds the number of namespaces tracked at once. When
	// a new namespace would exceed it, the least recently used one is
	// dropped and its keys are deleted from the base store.
	MaxPartitions int
	Logger        logger.Logger
}

// DefaultMaxPartitions applies when PartitionOptions.MaxPartitions <= 0.
const DefaultMaxPartitions = 4096

type partition struct {
	sizes map[string]int
	used  int
}

// Partitioned gives each client namespace its own quota on top of a shared
// Store, so one caller filling its budget never fails another's writes.
// Reads and writes touch the namespace's recency.
type Partitioned struct {
	base   Store
	quota  int
	logger logger.Logger

	mu      sync.Mutex
	parts   *lru.Cache[string, *partition]
	evicted map[string]*partition
}

// NewPartitioned wraps base. Close closes base.
func NewPartitioned(base Store, opts PartitionOptions) (*Partitioned, error) {
	if opts.Quota <= 0 {
		return nil, fmt.Errorf("partition quota must be positive, got %d", opts.Quota)
	}
	if opts.MaxPartitions <= 0 {
		opts.MaxPartitions = DefaultMaxPartitions
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	p := &Partitioned{
		base:    base,
		quota:   opts.Quota,
		logger:  opts.Logger,
		evicted: make(map[string]*partition),
	}
	parts, err := lru.NewWithEvict(opts.MaxPartitions, func(ns string, part *partition) {
		p.evicted[ns] = part
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create partition table: %w", err)
	}
	p.parts = parts
	return p, nil
}

func (p *Partitioned) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	p.parts.Get(Namespace(key))
	p.mu.Unlock()

	return p.base.Get(ctx, key)
}

func (p *Partitioned) Set(ctx context.Context, key, value string) error {
	ns := Namespace(key)

	p.mu.Lock()
	defer p.mu.Unlock()

	part, ok := p.parts.Get(ns)
	if !ok {
		part = &partition{sizes: make(map[string]int)}
		// Evict before writing so the base never holds more than
		// MaxPartitions budgets.
		p.parts.Add(ns, part)
		p.dropEvicted(ctx)
	}

	size := len(key) + len(value)
	used := part.used - part.sizes[key] + size
	if used > p.quota {
		return quotaError(key, fmt.Errorf("client %q needs %d bytes, quota is %d", ns, used, p.quota))
	}

	if err := p.base.Set(ctx, key, value); err != nil {
		return err
	}
	part.sizes[key] = size
	part.used = used
	return nil
}

// dropEvicted deletes the keys of evicted namespaces. Must hold p.mu.
func (p *Partitioned) dropEvicted(ctx context.Context) {
	for ns, part := range p.evicted {
		delete(p.evicted, ns)

		d, ok := p.base.(Deleter)
		if !ok {
			continue
		}
		for key := range part.sizes {
			if err := d.Delete(ctx, key); err != nil {
				p.logger.Warn("failed to drop evicted client key",
					logger.String("client", ns), logger.String("key", key), logger.Error(err))
			}
		}
		p.logger.Debug("client lists evicted",
			logger.String("client", ns), logger.Int("bytes", part.used))
	}
}

// Used returns the bytes counted against ns.
func (p *Partitioned) Used(ns string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if part, ok := p.parts.Peek(ns); ok {
		return part.used
	}
	return 0
}

// Len returns the number of tracked namespaces.
func (p *Partitioned) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parts.Len()
}

func (p *Partitioned) Close() error { return p.base.Close() }
