package chathandler

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
} // @name HealthResponse
