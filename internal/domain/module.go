package domain

import "strings"

// ModuleType is the category-classifying type of a catalog entry.
type ModuleType string

const (
	TypeOperational   ModuleType = "operational"
	TypeConfig        ModuleType = "config"
	TypeRPC           ModuleType = "rpc"
	TypeEvents        ModuleType = "events"
	TypeMIB           ModuleType = "mib"
	TypeIETF          ModuleType = "ietf"
	TypeOpenConfig    ModuleType = "openconfig"
	TypeConfiguration ModuleType = "configuration"
	TypeOther         ModuleType = "other"
	TypeYANGTree      ModuleType = "yang-tree"
	TypeMIBTree       ModuleType = "mib-tree"
)

// KnownTypes lists every type the catalog generator emits, in display order.
var KnownTypes = []ModuleType{
	TypeOperational,
	TypeConfig,
	TypeRPC,
	TypeEvents,
	TypeMIB,
	TypeIETF,
	TypeOpenConfig,
	TypeConfiguration,
	TypeOther,
	TypeYANGTree,
	TypeMIBTree,
}

// Known reports whether t is one of KnownTypes.
func (t ModuleType) Known() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// CategoryMIBModel is the internal category of MIB-derived entries.
const CategoryMIBModel = "swagger-mib-model"

// Module represents one documentation entry of the catalog.
//
// A Module is immutable once the catalog is built and is uniquely
// identified by its Name.
type Module struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// Name is the unique key.
	// Example: Cisco-IOS-XE-interfaces-oper
	Name string `json:"name" yaml:"name"`

	// Type classifies the module (operational, config, ...).
	Type ModuleType `json:"type" yaml:"type"`

	// Category is the internal classification, usually the generator
	// directory. Example: swagger-mib-model
	Category string `json:"category" yaml:"category"`

	// ─────────────────────────────
	// Display
	// ─────────────────────────────

	DisplayCategory string `json:"displayCategory" yaml:"displayCategory"`
	Emoji           string `json:"emoji" yaml:"emoji"`
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`

	// ─────────────────────────────
	// Searchable text
	// ─────────────────────────────

	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`

	// ─────────────────────────────
	// Links (optional)
	// ─────────────────────────────

	SwaggerURL  string `json:"swaggerUrl,omitempty" yaml:"swaggerUrl,omitempty"`
	YangTreeURL string `json:"yangTreeUrl,omitempty" yaml:"yangTreeUrl,omitempty"`
}

// HasSpec reports whether the module links to an API spec.
func (m Module) HasSpec() bool { return strings.TrimSpace(m.SwaggerURL) != "" }

// HasTree reports whether the module links to a YANG tree.
func (m Module) HasTree() bool { return strings.TrimSpace(m.YangTreeURL) != "" }

// IsMIB reports whether the module is derived from an SNMP MIB.
func (m Module) IsMIB() bool { return m.Category == CategoryMIBModel }
