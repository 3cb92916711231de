package request

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Name         string `json:"name"`
	HostPassword string `json:"host_password,omitempty"`
}
