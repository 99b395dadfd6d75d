package server

import "github.com/gin-gonic/gin"

// APIResponse is the envelope of every API reply.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func reply(c *gin.Context, code int, status string, data any, message string, err error) {
	resp := APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(code, resp)
}

func success(c *gin.Context, code int, data any, message string) {
	reply(c, code, "success", data, message, nil)
}

func fail(c *gin.Context, code int, err error, message string) {
	reply(c, code, "error", nil, message, err)
}
