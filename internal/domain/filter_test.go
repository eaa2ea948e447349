package domain

import "testing"

func testModules() map[string]Module {
	return map[string]Module{
		"ietf": {
			Name:        "ietf-interfaces",
			Type:        TypeIETF,
			Category:    "swagger-ietf-model",
			SwaggerURL:  "swagger-ietf-model/?url=api/ietf-interfaces.json",
			YangTreeURL: "yang-trees/ietf-interfaces.html",
		},
		"native": {
			Name:       "Cisco-IOS-XE-native",
			Type:       TypeConfig,
			Category:   "swagger-native-config-model",
			SwaggerURL: "swagger-native-config-model/?url=api/Cisco-IOS-XE-native.json",
		},
		"oc": {
			Name:        "openconfig-interfaces",
			Type:        TypeOpenConfig,
			Category:    "swagger-openconfig-model",
			YangTreeURL: "yang-trees/openconfig-interfaces.html",
		},
		"mib": {
			Name:       "IF-MIB",
			Type:       TypeMIB,
			Category:   CategoryMIBModel,
			SwaggerURL: "swagger-mib-model/?url=api/IF-MIB.json",
		},
		"mibtree": {
			Name:        "CISCO-PROCESS-MIB",
			Type:        TypeMIBTree,
			Category:    "yang-trees",
			YangTreeURL: "yang-trees/mib-trees/CISCO-PROCESS-MIB.html",
		},
	}
}

func TestFilterSetMatch(t *testing.T) {
	mods := testModules()

	tests := []struct {
		name  string
		setup func(f *FilterSet)
		want  map[string]bool
	}{
		{
			name:  "all dimensions are identity",
			setup: func(f *FilterSet) {},
			want:  map[string]bool{"ietf": true, "native": true, "oc": true, "mib": true, "mibtree": true},
		},
		{
			name:  "type membership is OR within dimension",
			setup: func(f *FilterSet) { f.SetTypes(TypeIETF, TypeConfig) },
			want:  map[string]bool{"ietf": true, "native": true},
		},
		{
			name:  "cisco prefix is case-insensitive",
			setup: func(f *FilterSet) { f.Prefix = PrefixCisco },
			want:  map[string]bool{"native": true, "mibtree": true},
		},
		{
			name:  "ietf prefix",
			setup: func(f *FilterSet) { f.Prefix = PrefixIETF },
			want:  map[string]bool{"ietf": true},
		},
		{
			name:  "openconfig prefix",
			setup: func(f *FilterSet) { f.Prefix = PrefixOpenConfig },
			want:  map[string]bool{"oc": true},
		},
		{
			name:  "mib prefix uses internal category regardless of type",
			setup: func(f *FilterSet) { f.Prefix = PrefixMIB },
			want:  map[string]bool{"mib": true},
		},
		{
			name:  "has tree",
			setup: func(f *FilterSet) { f.Tree = AvailYes },
			want:  map[string]bool{"ietf": true, "oc": true, "mibtree": true},
		},
		{
			name:  "has no tree",
			setup: func(f *FilterSet) { f.Tree = AvailNo },
			want:  map[string]bool{"native": true, "mib": true},
		},
		{
			name:  "has spec",
			setup: func(f *FilterSet) { f.Spec = AvailYes },
			want:  map[string]bool{"ietf": true, "native": true, "mib": true},
		},
		{
			name: "dimensions compose with AND",
			setup: func(f *FilterSet) {
				f.Tree = AvailYes
				f.Spec = AvailNo
				f.Prefix = PrefixOpenConfig
			},
			want: map[string]bool{"oc": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilterSet()
			tt.setup(&f)
			for key, m := range mods {
				if got := f.Match(m); got != tt.want[key] {
					t.Errorf("Match(%s) = %v, want %v", m.Name, got, tt.want[key])
				}
			}
		})
	}
}

// Flipping a single dimension to a non-matching value removes a passing
// module; flipping it back restores it.
func TestFilterSetSingleDimensionFlip(t *testing.T) {
	m := testModules()["ietf"]

	flips := []struct {
		name string
		set  func(f *FilterSet)
	}{
		{"type", func(f *FilterSet) { f.SetTypes(TypeRPC) }},
		{"prefix", func(f *FilterSet) { f.Prefix = PrefixCisco }},
		{"tree", func(f *FilterSet) { f.Tree = AvailNo }},
		{"spec", func(f *FilterSet) { f.Spec = AvailNo }},
	}

	for _, tt := range flips {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilterSet()
			if !f.Match(m) {
				t.Fatal("module should pass the identity filter")
			}
			tt.set(&f)
			if f.Match(m) {
				t.Errorf("module should be removed after flipping %s", tt.name)
			}
			f.Reset()
			if !f.Match(m) {
				t.Errorf("module should pass again after Reset")
			}
		})
	}
}

func TestToggleType(t *testing.T) {
	f := NewFilterSet()

	f.ToggleType(TypeIETF)
	if f.AllTypes() {
		t.Fatal("selecting a type should drop \"all\"")
	}
	if got := f.Types(); len(got) != 1 || got[0] != TypeIETF {
		t.Fatalf("Types() = %v, want [ietf]", got)
	}

	f.ToggleType(TypeConfig)
	if got := f.Types(); len(got) != 2 {
		t.Fatalf("Types() = %v, want 2 types", got)
	}

	f.ToggleType(TypeIETF)
	f.ToggleType(TypeConfig)
	if !f.AllTypes() {
		t.Errorf("empty selection should fall back to \"all\", got %v", f.Types())
	}

	f.ToggleType(TypeRPC)
	f.ToggleType(TypeAll)
	if !f.AllTypes() || len(f.Types()) != 1 {
		t.Errorf("toggling \"all\" should reset the selection, got %v", f.Types())
	}
}

func TestFilterSetKeyIsCanonical(t *testing.T) {
	a := NewFilterSet()
	a.SetTypes(TypeRPC, TypeIETF)
	b := NewFilterSet()
	b.SetTypes(TypeIETF, TypeRPC)

	if a.Key() != b.Key() {
		t.Errorf("Key() differs for equal sets: %q vs %q", a.Key(), b.Key())
	}

	b.Tree = AvailYes
	if a.Key() == b.Key() {
		t.Error("Key() should change when a dimension changes")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewFilterSet()
	a.SetTypes(TypeIETF)
	b := a.Clone()
	b.ToggleType(TypeRPC)

	if len(a.Types()) != 1 {
		t.Errorf("mutating a clone changed the original: %v", a.Types())
	}
}

func TestParseFilters(t *testing.T) {
	if p, err := ParsePrefix(" MIB "); err != nil || p != PrefixMIB {
		t.Errorf("ParsePrefix() = %q, %v", p, err)
	}
	if p, err := ParsePrefix(""); err != nil || p != PrefixAll {
		t.Errorf("ParsePrefix(empty) = %q, %v", p, err)
	}
	if _, err := ParsePrefix("juniper"); err == nil {
		t.Error("ParsePrefix should reject unknown values")
	}
	if a, err := ParseAvailability("yes"); err != nil || a != AvailYes {
		t.Errorf("ParseAvailability() = %q, %v", a, err)
	}
	if _, err := ParseAvailability("maybe"); err == nil {
		t.Error("ParseAvailability should reject unknown values")
	}
	if got := ParseTypes("ietf, Config,,"); len(got) != 2 || got[1] != TypeConfig {
		t.Errorf("ParseTypes() = %v", got)
	}
}
