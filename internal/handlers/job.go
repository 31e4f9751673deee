// internal/handlers/job.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type JobHandler struct {
	dispatcher *services.Dispatcher
}

func NewJobHandler(dispatcher *services.Dispatcher) *JobHandler {
	return &JobHandler{
		dispatcher: dispatcher,
	}
}

// GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	state, err := h.dispatcher.Poll(jobID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, state)
}
