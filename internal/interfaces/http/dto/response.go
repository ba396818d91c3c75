package dto

// Response messages shared by every entity kind
const (
	MsgServerError    = "Server error"
	MsgInvalidBody    = "Invalid request body"
	MsgBodyTooLarge   = "Request body too large"
	MsgRouteNotFound  = "Not found"
	MsgAlive          = "I am alive!"
	HealthHealthy     = "healthy"
	HealthUnhealthy   = "unhealthy"
	HealthDatabaseOK  = "ok"
	HealthDatabaseBad = "unreachable"
)

// MessageResponse is the body of every non-entity answer, e.g. {"message":"Job not found"}
type MessageResponse struct {
	Message string `json:"message"`
}

// NewMessage creates a MessageResponse
func NewMessage(message string) MessageResponse {
	return MessageResponse{Message: message}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
