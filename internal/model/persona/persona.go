package persona

// Persona mirrors the remote service's persona profile record.
type Persona struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	IsSystem bool           `json:"is_system"`
	IsCustom bool           `json:"is_custom"`
	Profile  map[string]any `json:"profile_json,omitempty"`
}

// Catalog indexes personas by identifier for the lifetime of a single
// operation. It is never cached across calls; the remote service owns
// the data.
type Catalog map[string]Persona

// Index builds a Catalog from a fetched persona list.
func Index(personas []Persona) Catalog {
	catalog := make(Catalog, len(personas))
	for _, p := range personas {
		catalog[p.ID] = p
	}
	return catalog
}

// IDs lists the identifiers of a fetched persona list in order.
func IDs(personas []Persona) []string {
	ids := make([]string, 0, len(personas))
	for _, p := range personas {
		ids = append(ids, p.ID)
	}
	return ids
}
