package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TypeAll is the type-dimension value matching every module.
const TypeAll ModuleType = "all"

// Prefix is the name-prefix family dimension.
type Prefix string

const (
	PrefixAll        Prefix = "all"
	PrefixCisco      Prefix = "cisco"
	PrefixIETF       Prefix = "ietf"
	PrefixOpenConfig Prefix = "openconfig"
	PrefixMIB        Prefix = "mib"
)

// Availability is the has-tree / has-spec dimension.
type Availability string

const (
	AvailAll Availability = "all"
	AvailYes Availability = "yes"
	AvailNo  Availability = "no"
)

// Name prefixes of the vendor and standards families (compared lowercased).
const (
	namePrefixCisco      = "cisco-"
	namePrefixIETF       = "ietf-"
	namePrefixOpenConfig = "openconfig-"
)

// FilterSet is the current combination of the type-membership filter and the
// advanced filters. The zero value is not valid; use NewFilterSet.
type FilterSet struct {
	types  map[ModuleType]struct{}
	Prefix Prefix
	Tree   Availability
	Spec   Availability
}

// NewFilterSet returns a filter set where every dimension is "all".
func NewFilterSet() FilterSet {
	f := FilterSet{}
	f.Reset()
	return f
}

// Reset restores every dimension to "all" and the type set to {"all"}.
func (f *FilterSet) Reset() {
	f.types = map[ModuleType]struct{}{TypeAll: {}}
	f.Prefix = PrefixAll
	f.Tree = AvailAll
	f.Spec = AvailAll
}

// Clone returns a deep copy; FilterSet holds a map and must not be shared
// between owners.
func (f FilterSet) Clone() FilterSet {
	c := f
	c.types = make(map[ModuleType]struct{}, len(f.types))
	for t := range f.types {
		c.types[t] = struct{}{}
	}
	return c
}

// ToggleType applies a click on a type button.
// "all" clears the selection. Any other type removes "all" and toggles
// membership; an empty selection falls back to {"all"}.
func (f *FilterSet) ToggleType(t ModuleType) {
	if f.types == nil || t == TypeAll {
		f.types = map[ModuleType]struct{}{TypeAll: {}}
		return
	}

	delete(f.types, TypeAll)
	if _, ok := f.types[t]; ok {
		delete(f.types, t)
	} else {
		f.types[t] = struct{}{}
	}

	if len(f.types) == 0 {
		f.types[TypeAll] = struct{}{}
	}
}

// SetTypes replaces the type selection. Empty input (or any "all") selects all.
func (f *FilterSet) SetTypes(types ...ModuleType) {
	f.types = make(map[ModuleType]struct{}, len(types))
	for _, t := range types {
		if t == TypeAll {
			f.types = map[ModuleType]struct{}{TypeAll: {}}
			return
		}
		f.types[t] = struct{}{}
	}
	if len(f.types) == 0 {
		f.types[TypeAll] = struct{}{}
	}
}

// Types returns the selected types, sorted.
func (f FilterSet) Types() []ModuleType {
	if f.types == nil {
		return []ModuleType{TypeAll}
	}
	out := make([]ModuleType, 0, len(f.types))
	for t := range f.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllTypes reports whether the type dimension is the identity.
func (f FilterSet) AllTypes() bool {
	if f.types == nil {
		return true
	}
	_, ok := f.types[TypeAll]
	return ok
}

// Match reports whether m passes every dimension.
func (f FilterSet) Match(m Module) bool {
	return f.matchType(m) && f.matchPrefix(m) &&
		matchAvailability(f.Tree, m.HasTree()) &&
		matchAvailability(f.Spec, m.HasSpec())
}

func (f FilterSet) matchType(m Module) bool {
	if f.AllTypes() {
		return true
	}
	_, ok := f.types[m.Type]
	return ok
}

func (f FilterSet) matchPrefix(m Module) bool {
	name := strings.ToLower(m.Name)
	switch f.Prefix {
	case PrefixCisco:
		return strings.HasPrefix(name, namePrefixCisco)
	case PrefixIETF:
		return strings.HasPrefix(name, namePrefixIETF)
	case PrefixOpenConfig:
		return strings.HasPrefix(name, namePrefixOpenConfig)
	case PrefixMIB:
		return m.IsMIB()
	default:
		return true
	}
}

func matchAvailability(a Availability, has bool) bool {
	switch a {
	case AvailYes:
		return has
	case AvailNo:
		return !has
	default:
		return true
	}
}

// Key returns a canonical representation, stable across equal filter sets.
func (f FilterSet) Key() string {
	types := f.Types()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return fmt.Sprintf("type=%s;prefix=%s;tree=%s;spec=%s",
		strings.Join(parts, ","), normPrefix(f.Prefix), normAvail(f.Tree), normAvail(f.Spec))
}

func normPrefix(p Prefix) Prefix {
	if p == "" {
		return PrefixAll
	}
	return p
}

func normAvail(a Availability) Availability {
	if a == "" {
		return AvailAll
	}
	return a
}

// ParsePrefix parses a prefix-family value. Empty means "all".
func ParsePrefix(s string) (Prefix, error) {
	switch p := Prefix(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PrefixAll, nil
	case PrefixAll, PrefixCisco, PrefixIETF, PrefixOpenConfig, PrefixMIB:
		return p, nil
	default:
		return "", fmt.Errorf("unknown prefix filter %q", s)
	}
}

// ParseAvailability parses a has-tree / has-spec value. Empty means "all".
func ParseAvailability(s string) (Availability, error) {
	switch a := Availability(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AvailAll, nil
	case AvailAll, AvailYes, AvailNo:
		return a, nil
	default:
		return "", fmt.Errorf("unknown availability filter %q", s)
	}
}

// ParseTypes parses a comma-separated type list. Empty means {"all"}.
func ParseTypes(s string) []ModuleType {
	var out []ModuleType
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, ModuleType(part))
		}
	}
	return out
}
