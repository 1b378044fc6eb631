package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Countries int    `json:"countries"`
}

// CountryResponse represents one joined country
type CountryResponse struct {
	ISO3    string `json:"iso3"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// CountryListResponse represents list countries response
type CountryListResponse struct {
	Region    string            `json:"region,omitempty"`
	Countries []CountryResponse `json:"countries"`
	Count     int               `json:"count"`
}

// SeriesResponse represents the aligned raw series of a country
type SeriesResponse struct {
	ISO3       string    `json:"iso3"`
	Country    string    `json:"country,omitempty"`
	Years      []int     `json:"years"`
	Cases      []float64 `json:"cases"`
	Population []float64 `json:"population"`
	Incidence  []float64 `json:"incidence"` // Cases per PopNorm people
}

// WeightsResponse represents generated window weights
type WeightsResponse struct {
	N         int       `json:"n"`
	Spread    float64   `json:"s"`
	Offset    int       `json:"dx"`
	Normalize bool      `json:"normalize"`
	Weights   []float64 `json:"weights"`
	Sum       float64   `json:"sum"`
}

// ResolveResponse represents a resolved country name
type ResolveResponse struct {
	Name    string `json:"name"`
	ISO3    string `json:"iso3"`
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
}

// RunResponse describes one stored summary run
type RunResponse struct {
	RunID     string `json:"run_id"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

// RunListResponse represents list runs response
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
