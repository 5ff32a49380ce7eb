package entities

import (
	"fmt"
	"math/rand"
)

// LeadTimeKind names a lead time provider implementation
type LeadTimeKind string

const (
	FixedLeadTimeKind   LeadTimeKind = "fixed"
	TableLeadTimeKind   LeadTimeKind = "table"
	UniformLeadTimeKind LeadTimeKind = "uniform"
)

// LeadTimeProvider returns the number of periods until a receipt created in
// period arrives. It is asked exactly once per receipt.
type LeadTimeProvider interface {
	LeadTime(period Period) int
	Spec() LeadTimeSpec
}

// LeadTimeSpec is the serializable description of a provider
type LeadTimeSpec struct {
	Kind    LeadTimeKind `json:"kind" yaml:"kind"`
	Periods int          `json:"periods,omitempty" yaml:"periods,omitempty"`
	Table   []int        `json:"table,omitempty" yaml:"table,omitempty"`
	Default int          `json:"default,omitempty" yaml:"default,omitempty"`
	Min     int          `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int          `json:"max,omitempty" yaml:"max,omitempty"`
	Seed    int64        `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Provider builds the provider described by the spec. An empty kind means fixed.
func (s LeadTimeSpec) Provider() (LeadTimeProvider, error) {
	switch s.Kind {
	case "", FixedLeadTimeKind:
		if s.Periods < 0 {
			return nil, fmt.Errorf("%w: fixed lead time cannot be negative, got %d", ErrInvalidLeadTime, s.Periods)
		}
		return FixedLeadTime(s.Periods), nil
	case TableLeadTimeKind:
		return NewTableLeadTime(s.Table, s.Default)
	case UniformLeadTimeKind:
		return NewUniformLeadTime(s.Min, s.Max, s.Seed)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidLeadTime, s.Kind)
	}
}

// FixedLeadTime always returns the same number of periods
type FixedLeadTime int

func (f FixedLeadTime) LeadTime(Period) int { return int(f) }

func (f FixedLeadTime) Spec() LeadTimeSpec {
	return LeadTimeSpec{Kind: FixedLeadTimeKind, Periods: int(f)}
}

// TableLeadTime looks lead times up by period, falling back to a default
// outside the table
type TableLeadTime struct {
	table       []int
	defaultTime int
}

// NewTableLeadTime creates a validated TableLeadTime
func NewTableLeadTime(table []int, defaultTime int) (*TableLeadTime, error) {
	if defaultTime < 0 {
		return nil, fmt.Errorf("%w: default cannot be negative, got %d", ErrInvalidLeadTime, defaultTime)
	}
	for i, lt := range table {
		if lt < 0 {
			return nil, fmt.Errorf("%w: table entry %d cannot be negative, got %d", ErrInvalidLeadTime, i, lt)
		}
	}
	t := make([]int, len(table))
	copy(t, table)
	return &TableLeadTime{table: t, defaultTime: defaultTime}, nil
}

func (t *TableLeadTime) LeadTime(period Period) int {
	if period < 0 || int(period) >= len(t.table) {
		return t.defaultTime
	}
	return t.table[period]
}

func (t *TableLeadTime) Spec() LeadTimeSpec {
	table := make([]int, len(t.table))
	copy(table, t.table)
	return LeadTimeSpec{Kind: TableLeadTimeKind, Table: table, Default: t.defaultTime}
}

// UniformLeadTime draws lead times uniformly from [min, max] with a seeded source
type UniformLeadTime struct {
	min, max int
	seed     int64
	rng      *rand.Rand
}

// NewUniformLeadTime creates a validated UniformLeadTime
func NewUniformLeadTime(lo, hi int, seed int64) (*UniformLeadTime, error) {
	if lo < 0 {
		return nil, fmt.Errorf("%w: min cannot be negative, got %d", ErrInvalidLeadTime, lo)
	}
	if hi < lo {
		return nil, fmt.Errorf("%w: max %d cannot be less than min %d", ErrInvalidLeadTime, hi, lo)
	}
	return &UniformLeadTime{
		min:  lo,
		max:  hi,
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

func (u *UniformLeadTime) LeadTime(Period) int {
	return u.min + u.rng.Intn(u.max-u.min+1)
}

func (u *UniformLeadTime) Spec() LeadTimeSpec {
	return LeadTimeSpec{Kind: UniformLeadTimeKind, Min: u.min, Max: u.max, Seed: u.seed}
}
