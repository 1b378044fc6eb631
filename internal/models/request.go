package models

// CountriesQuery represents list countries query parameters
type CountriesQuery struct {
	Region string `query:"region"`
}

// SnapshotQuery represents region snapshot query parameters
type SnapshotQuery struct {
	Years string `query:"years"` // Comma separated, e.g. 1990,2014
}

// WeightsQuery represents weight generator query parameters. Unset
// parameters keep the values the handler presets.
type WeightsQuery struct {
	N         int     `query:"n"`
	Spread    float64 `query:"s"`
	Offset    int     `query:"dx"`
	Normalize bool    `query:"normalize"`
}

// ResolveQuery represents country resolution query parameters
type ResolveQuery struct {
	Name string `query:"name"`
}

// RunQuery represents trigger run query parameters
type RunQuery struct {
	Region string `query:"region"`
}
