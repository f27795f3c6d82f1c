package api

// Endpoint describes the single OpsPanel backend target used by the CLI.
type Endpoint struct {
	BaseURL   string
	UserAgent string
}
