package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/infrastructure/metrics"
	"github.com/janhq/genai-proxy/internal/interfaces/httpserver/responses"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

// JobHandler exposes job submission and polling.
type JobHandler struct {
	routes  job.RouteResolver
	invoker job.AsyncInvoker
	log     zerolog.Logger
}

func NewJobHandler(routes job.RouteResolver, invoker job.AsyncInvoker, log zerolog.Logger) *JobHandler {
	return &JobHandler{
		routes:  routes,
		invoker: invoker,
		log:     log.With().Str("component", "job-handler").Logger(),
	}
}

// Submit handles POST /api/:job_type and returns as soon as the provider has
// accepted the job.
// @Summary      Submit a job
// @Description  Validates the job-type specific body, uploads inline attachments and submits the job without waiting for it.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job_type  path      string  true  "Job type, e.g. txt2img"
// @Param        request   body      object  true  "Job-type specific fields"
// @Success      200       {object}  responses.SubmitResponse
// @Failure      400       {object}  responses.ErrorResponse
// @Failure      404       {object}  responses.ErrorResponse
// @Failure      502       {object}  responses.ErrorResponse
// @Router       /api/{job_type} [post]
func (h *JobHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("job_type")

	rt, err := h.routes.Resolve(ctx, key)
	if err != nil {
		metrics.RecordSubmission("unknown", "route_not_found")
		responses.HandleError(c, h.log, err, "Unknown job type")
		return
	}

	req, ok := job.NewRequest(rt.Kind)
	if !ok {
		responses.HandleNewError(c, h.log, platformerrors.ErrorTypeInternal, "Job type is misconfigured", "handler-unknown-kind")
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		metrics.RecordSubmission(key, "invalid_body")
		responses.HandleNewError(c, h.log, platformerrors.ErrorTypeValidation, "Request body must be a JSON object", "handler-invalid-body")
		return
	}

	id, err := h.invoker.Submit(ctx, key, req)
	if err != nil {
		metrics.RecordSubmission(key, "error")
		responses.HandleError(c, h.log, err, "Failed to submit job")
		return
	}

	metrics.RecordSubmission(key, "accepted")
	c.JSON(http.StatusOK, responses.SubmitResponse{PredictionID: id})
}

// Poll handles GET /api/prediction/:id. Each call re-reads the provider.
// @Summary      Poll a prediction
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Prediction id"
// @Success      200  {object}  responses.PredictionResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /api/prediction/{id} [get]
func (h *JobHandler) Poll(c *gin.Context) {
	j, err := h.invoker.Poll(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, h.log, err, "Failed to fetch prediction")
		return
	}

	metrics.RecordPoll(j.Status.String())
	c.JSON(http.StatusOK, responses.NewPredictionResponse(j))
}
