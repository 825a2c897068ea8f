package model

// HealthStatus represents the health check response for the service and its
// database connection.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
