package dto

// AuthStatusResponse reports the session state for one provider.
// StartingYear is only present when the probe found a logged-in session
// with a readable order-history year range.
type AuthStatusResponse struct {
	Provider     string `json:"provider"`
	Status       string `json:"status"`
	StartingYear int    `json:"starting_year,omitempty"`
}

// AuthStatusListResponse reports session state across all providers.
type AuthStatusListResponse struct {
	Providers []AuthStatusResponse `json:"providers"`
	Count     int                  `json:"count"`
}
