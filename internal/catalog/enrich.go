package catalog

// ArchitectureAccessor is the minimal view of a catalog that Enrich needs.
type ArchitectureAccessor interface {
	Names() []string
	SetArchitecture(name string, arch Architecture) bool
}

// Enrich attaches fetched architecture metadata to every registered model
// found in archs. Models missing from archs are left unchanged.
// It returns the number of models enriched.
func Enrich(accessor ArchitectureAccessor, archs map[string]Architecture) int {
	if accessor == nil || len(archs) == 0 {
		return 0
	}

	var enriched int
	for _, name := range accessor.Names() {
		arch, ok := archs[name]
		if !ok {
			continue
		}
		if accessor.SetArchitecture(name, arch) {
			enriched++
		}
	}
	return enriched
}
