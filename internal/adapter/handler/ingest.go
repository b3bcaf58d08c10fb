package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callsight-io/callsight/errors"
	ingestdto "github.com/callsight-io/callsight/internal/adapter/dto/ingest"
	"github.com/callsight-io/callsight/internal/domain/entities"
	ingestuse "github.com/callsight-io/callsight/internal/usecase/ingest"
)

// IngestHandler accepts utterance batches from the telephony bridge
type IngestHandler struct {
	svc    ingestuse.Service
	logger *zap.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(svc ingestuse.Service, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, logger: logger}
}

// PostUtterances ingests a batch of utterances
// @Summary      Ingest utterances
// @Description  Accepts a batch of raw utterances; malformed ones are dropped with counted reasons, never rejected as a whole
// @Tags         Ingest
// @Accept       json
// @Produce      json
// @Param        request  body      ingestdto.BatchRequest  true  "Utterance batch"
// @Success      200      {object}  map[string]interface{}  "Accepted/dropped counts"
// @Failure      400      {object}  map[string]interface{}  "Malformed request body"
// @Router       /ingest/utterances [post]
func (h *IngestHandler) PostUtterances(c echo.Context) error {
	var req ingestdto.BatchRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	batch := make([]entities.Utterance, 0, len(req.Utterances))
	for _, u := range req.Utterances {
		batch = append(batch, u.ToEntity())
	}

	result, err := h.svc.IngestBatch(c.Request().Context(), batch)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, result)
}
