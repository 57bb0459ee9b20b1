package persona

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when selection resolution yields no
// personas that exist in the current catalog.
var ErrEmptySelection = errors.New("no personas resolved for analysis")

// panels are the named preset subsets of the system persona catalog.
// Entries that do not exist in the fetched catalog are dropped at
// resolution time rather than failing, so presets survive catalog
// edits on the remote side.
var panels = map[string][]string{
	"fast":      {"cto_skeptic", "vp_marketing"},
	"technical": {"cto_skeptic", "security_engineer", "devops_lead"},
	"business":  {"startup_founder", "procurement_lead", "vp_marketing"},
}

// Panels returns a copy of every preset panel keyed by name.
func Panels() map[string][]string {
	out := make(map[string][]string, len(panels))
	for name, ids := range panels {
		out[name] = append([]string(nil), ids...)
	}
	return out
}

// PanelIDs returns the raw preset members for a named panel.
func PanelIDs(name string) ([]string, bool) {
	ids, ok := panels[name]
	return ids, ok
}

// ResolveSelection turns a selection request into the concrete persona
// ID list for a roundtable run. Precedence: explicit IDs, then a named
// panel intersected with the catalog, then every catalog persona.
// Explicit IDs must all exist; unknown entries inside a known panel are
// silently dropped.
func ResolveSelection(explicit []string, panel string, personas []Persona) ([]string, error) {
	catalog := Index(personas)

	if len(explicit) > 0 {
		for _, id := range explicit {
			if _, ok := catalog[id]; !ok {
				return nil, fmt.Errorf("unknown persona id %q", id)
			}
		}
		return append([]string(nil), explicit...), nil
	}

	if panel != "" {
		members, ok := PanelIDs(panel)
		if !ok {
			return nil, fmt.Errorf("unknown panel %q", panel)
		}
		resolved := make([]string, 0, len(members))
		for _, id := range members {
			if _, ok := catalog[id]; ok {
				resolved = append(resolved, id)
			}
		}
		if len(resolved) == 0 {
			return nil, ErrEmptySelection
		}
		return resolved, nil
	}

	if len(personas) == 0 {
		return nil, ErrEmptySelection
	}
	return IDs(personas), nil
}
