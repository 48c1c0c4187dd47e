package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type UseCaseHandler struct {
	useCaseService services.UseCaseService
}

func NewUseCaseHandler(useCaseService services.UseCaseService) *UseCaseHandler {
	return &UseCaseHandler{useCaseService: useCaseService}
}

// GET /ucus
func (uh *UseCaseHandler) List(c *gin.Context) {
	out, err := uh.useCaseService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /uur_graph_query?type=usecase&type=userstory
func (uh *UseCaseHandler) Graph(c *gin.Context) {
	out, err := uh.useCaseService.Graph(c.Request.Context(), c.QueryArray("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
