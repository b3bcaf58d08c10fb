package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callsight-io/callsight/errors"
	insightsdto "github.com/callsight-io/callsight/internal/adapter/dto/insights"
	"github.com/callsight-io/callsight/internal/usecase/aggregate"
	insightsuse "github.com/callsight-io/callsight/internal/usecase/insights"
)

// InsightsHandler serves the agent-assist and supervisor read API
type InsightsHandler struct {
	svc       insightsuse.Service
	scheduler *aggregate.Scheduler
	logger    *zap.Logger
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(svc insightsuse.Service, scheduler *aggregate.Scheduler, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, scheduler: scheduler, logger: logger}
}

// GetCallContext returns the live context of a call
// @Summary      Get call context
// @Description  Returns member details, recent transcript, sentiment, intents, and compliance issues for a live call
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string                  true  "Call ID"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}  "Call not found"
// @Failure      503      {object}  map[string]interface{}  "Data source unavailable"
// @Router       /calls/{call_id}/context [get]
func (h *InsightsHandler) GetCallContext(c echo.Context) error {
	callID := c.Param("call_id")
	if callID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call_id is required"))
	}

	callCtx, meta, err := h.svc.GetCallContext(c.Request().Context(), callID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleRead(h.logger, c, callCtx, meta)
}

// CheckCompliance returns a call's compliance violations, newest first
// @Summary      Check compliance
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string  true  "Call ID"
// @Success      200      {object}  map[string]interface{}
// @Router       /calls/{call_id}/compliance [get]
func (h *InsightsHandler) CheckCompliance(c echo.Context) error {
	callID := c.Param("call_id")
	if callID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call_id is required"))
	}

	violations, meta, err := h.svc.CheckCompliance(c.Request().Context(), callID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleRead(h.logger, c, violations, meta)
}

// IdentifyEscalation returns the escalation assessment of a call
// @Summary      Identify escalation
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string  true  "Call ID"
// @Success      200      {object}  map[string]interface{}
// @Router       /calls/{call_id}/escalation [get]
func (h *InsightsHandler) IdentifyEscalation(c echo.Context) error {
	callID := c.Param("call_id")
	if callID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call_id is required"))
	}

	assessment, meta, err := h.svc.IdentifyEscalation(c.Request().Context(), callID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleRead(h.logger, c, assessment, meta)
}

// IdentifyEscalationBatch returns assessments for calls needing escalation
// @Summary      Batch escalation check
// @Description  Evaluates many calls and returns only those where escalation is recommended
// @Tags         Escalations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      insightsdto.EscalationBatchRequest  true  "Call IDs to evaluate"
// @Success      200      {object}  map[string]interface{}
// @Router       /escalations/batch [post]
func (h *InsightsHandler) IdentifyEscalationBatch(c echo.Context) error {
	var req insightsdto.EscalationBatchRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	result, err := h.svc.IdentifyEscalationBatch(c.Request().Context(), req.CallIDs)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// GetAgentPerformance returns an agent's daily performance rollups
// @Summary      Get agent performance
// @Tags         Agents
// @Produce      json
// @Security     BearerAuth
// @Param        agent_id  path      string  true   "Agent ID"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to        query     string  false  "End date (YYYY-MM-DD)"
// @Success      200       {object}  map[string]interface{}
// @Router       /agents/{agent_id}/performance [get]
func (h *InsightsHandler) GetAgentPerformance(c echo.Context) error {
	agentID := c.Param("agent_id")
	if agentID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("agent_id is required"))
	}

	var req insightsdto.DateRangeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	from, to, err := req.Range(time.Now())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	rows, meta, err := h.svc.GetAgentPerformance(c.Request().Context(), agentID, from, to)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleRead(h.logger, c, rows, meta)
}

// GetDailyStatistics returns whole-of-day statistics
// @Summary      Get daily statistics
// @Tags         Statistics
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  map[string]interface{}
// @Router       /statistics/daily [get]
func (h *InsightsHandler) GetDailyStatistics(c echo.Context) error {
	var req insightsdto.DateRangeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	from, to, err := req.Range(time.Now())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	rows, meta, err := h.svc.GetDailyStatistics(c.Request().Context(), from, to)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleRead(h.logger, c, rows, meta)
}

// AggregateCall explicitly re-runs aggregation for one call
// @Summary      Re-aggregate call
// @Description  Recomputes the call summary and its rollups immediately instead of waiting for the quiet-period sweep
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string  true  "Call ID"
// @Success      200      {object}  map[string]interface{}
// @Router       /calls/{call_id}/aggregate [post]
func (h *InsightsHandler) AggregateCall(c echo.Context) error {
	callID := c.Param("call_id")
	if callID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call_id is required"))
	}

	summary, err := h.scheduler.AggregateNow(c.Request().Context(), callID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summary)
}
