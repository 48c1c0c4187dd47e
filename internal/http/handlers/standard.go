package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type StandardHandler struct {
	standardService services.StandardService
}

func NewStandardHandler(standardService services.StandardService) *StandardHandler {
	return &StandardHandler{standardService: standardService}
}

// GET /standards?terms=1
func (sh *StandardHandler) List(c *gin.Context) {
	withTerms := c.Query("terms") == "1" || c.Query("terms") == "true"
	out, err := sh.standardService.List(c.Request.Context(), withTerms)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /standards
// body: one standard object or a list of them.
func (sh *StandardHandler) Import(c *gin.Context) {
	n, err := sh.standardService.ImportDocument(c.Request.Context(), c.Request.Body)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": "standards imported", "imported": n})
}
