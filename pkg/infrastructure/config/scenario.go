package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

// ErrInvalidScenario wraps every scenario validation failure
var ErrInvalidScenario = errors.New("invalid scenario")

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Policy types
const (
	PolicyNone      = "none"
	PolicyOrderUpTo = "order-up-to"
	PolicyMinMax    = "min-max"
)

// Demand types
const (
	DemandNone     = "none"
	DemandConstant = "constant"
	DemandTable    = "table"
)

// Scenario describes a network, its initial state and the collaborators
// driving a run
type Scenario struct {
	Name        string       `yaml:"name" json:"name" validate:"required"`
	Periods     int          `yaml:"periods" json:"periods" validate:"min=0"`
	StartPeriod int          `yaml:"start_period" json:"start_period" validate:"min=0"`
	Seed        int64        `yaml:"seed,omitempty" json:"seed,omitempty"`
	Nodes       []NodeConfig `yaml:"nodes" json:"nodes" validate:"required,min=1,dive"`
	Edges       []EdgeConfig `yaml:"edges" json:"edges" validate:"dive"`
}

// NodeConfig describes one node
type NodeConfig struct {
	ID           string                 `yaml:"id" json:"id" validate:"required"`
	Intercompany bool                   `yaml:"intercompany,omitempty" json:"intercompany,omitempty"`
	LeadTime     *entities.LeadTimeSpec `yaml:"lead_time,omitempty" json:"lead_time,omitempty"`
	// Stock seeds on-hand quantities per SKU
	Stock map[string]int64 `yaml:"stock,omitempty" json:"stock,omitempty" validate:"dive,keys,required,endkeys,min=0"`
	// Backlog seeds orders already placed on the node, keyed by requester
	Backlog    map[string]int64 `yaml:"backlog,omitempty" json:"backlog,omitempty" validate:"dive,keys,required,endkeys,min=0"`
	Backorders int64            `yaml:"backorders,omitempty" json:"backorders,omitempty" validate:"min=0"`
	Policy     PolicyConfig     `yaml:"policy,omitempty" json:"policy,omitempty"`
	Demand     DemandConfig     `yaml:"demand,omitempty" json:"demand,omitempty"`
}

// PolicyConfig selects the node's ordering policy
type PolicyConfig struct {
	Type  string `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=none order-up-to min-max"`
	Level int64  `yaml:"level,omitempty" json:"level,omitempty" validate:"min=0"`
	Min   int64  `yaml:"min,omitempty" json:"min,omitempty" validate:"min=0"`
	Max   int64  `yaml:"max,omitempty" json:"max,omitempty" validate:"min=0"`
}

// DemandConfig selects the customer demand profile of the node
type DemandConfig struct {
	Type     string  `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=none constant table"`
	Quantity int64   `yaml:"quantity,omitempty" json:"quantity,omitempty" validate:"min=0"`
	Table    []int64 `yaml:"table,omitempty" json:"table,omitempty" validate:"dive,min=0"`
	Default  int64   `yaml:"default,omitempty" json:"default,omitempty" validate:"min=0"`
}

// EdgeConfig describes one supply relationship
type EdgeConfig struct {
	Source      string `yaml:"source" json:"source" validate:"required"`
	Destination string `yaml:"destination" json:"destination" validate:"required,nefield=Source"`
	Number      int64  `yaml:"number" json:"number" validate:"required,min=1"`
}

// Load reads and validates a YAML scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var scenario Scenario
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Marshal encodes the scenario as YAML
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks struct constraints, then cross references between nodes
// and edges
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, formatValidationError(err))
	}

	ids := make(map[string]bool, len(s.Nodes))
	for _, node := range s.Nodes {
		if ids[node.ID] {
			return fmt.Errorf("%w: duplicate node %s", ErrInvalidScenario, node.ID)
		}
		ids[node.ID] = true
	}

	for _, node := range s.Nodes {
		if node.LeadTime != nil {
			if _, err := node.LeadTime.Provider(); err != nil {
				return fmt.Errorf("%w: node %s: %w", ErrInvalidScenario, node.ID, err)
			}
		}
		if node.Policy.Type == PolicyMinMax && node.Policy.Max < node.Policy.Min {
			return fmt.Errorf("%w: node %s: policy max %d below min %d",
				ErrInvalidScenario, node.ID, node.Policy.Max, node.Policy.Min)
		}
		for requester := range node.Backlog {
			if !ids[requester] {
				return fmt.Errorf("%w: node %s has backlog for unknown node %s", ErrInvalidScenario, node.ID, requester)
			}
		}
	}

	for _, edge := range s.Edges {
		if !ids[edge.Source] {
			return fmt.Errorf("%w: edge %s->%s references unknown node %s",
				ErrInvalidScenario, edge.Source, edge.Destination, edge.Source)
		}
		if !ids[edge.Destination] {
			return fmt.Errorf("%w: edge %s->%s references unknown node %s",
				ErrInvalidScenario, edge.Source, edge.Destination, edge.Destination)
		}
	}

	return nil
}

// Node returns the configuration of node id
func (s *Scenario) Node(id string) (*NodeConfig, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// report the first failure
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, e.Param(), e.Value())
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
