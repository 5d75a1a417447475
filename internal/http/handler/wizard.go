package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deckforge.app/wizard/internal/http/dto"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/wizard"
)

// UserIDHeader carries the authenticated user's id, injected by the edge
// proxy in front of this service.
const UserIDHeader = "X-User-ID"

type WizardHandler struct {
	wizardService service.WizardService
}

func NewWizardHandler(wizardService service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

// Start creates a fresh session for the user.
func (h *WizardHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	view, err := h.wizardService.Start(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to start wizard session", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionResponse(view))
}

// Resume returns the user's most recent unfinished session.
func (h *WizardHandler) Resume(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	view, err := h.wizardService.Resume(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no session to resume"})
			return
		}
		slog.ErrorContext(ctx, "failed to resume wizard session", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resume session"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

func (h *WizardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.wizardService.Get(ctx, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

// Update applies a partial edit to the current step without advancing.
func (h *WizardHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.StepPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	step, err := strconv.Atoi(c.DefaultQuery("step", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}

	view, err := h.wizardService.Update(ctx, sessionID, req.ToModel(step))
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

type advanceRequest struct {
	Step  int                  `json:"step" binding:"required,min=1,max=4"`
	Patch dto.StepPatchRequest `json:"patch"`
}

// Advance validates the step and moves forward. Validation failures come
// back as 422 with per-field messages; the session stays on the step.
func (h *WizardHandler) Advance(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldErrs, view, err := h.wizardService.Advance(ctx, sessionID, req.Step, req.Patch.ToModel(req.Step))
	if err != nil {
		if errors.Is(err, wizard.ErrInvalidStep) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondSessionError(c, err)
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.FieldErrorsResponse{FieldErrors: fieldErrs})
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

func (h *WizardHandler) Back(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.wizardService.GoBack(ctx, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrInvalidStep) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

func (h *WizardHandler) GoToStep(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}

	view, err := h.wizardService.GoToStep(ctx, sessionID, step)
	if err != nil {
		if errors.Is(err, wizard.ErrInvalidStep) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(view))
}

// Answer records (or rewrites) the answer for one interview question and
// returns its quality grade. Called on every debounced keystroke batch.
func (h *WizardHandler) Answer(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questionID := c.Param("questionId")

	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quality, err := h.wizardService.RecordAnswer(ctx, sessionID, questionID, req.Text)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	signals := make([]string, len(quality.Signals))
	for i, tag := range quality.Signals {
		signals[i] = string(tag)
	}

	c.JSON(http.StatusOK, dto.AnswerResponse{
		QuestionID: questionID,
		Quality:    string(quality.Tier),
		Label:      quality.Label,
		Signals:    signals,
	})
}

func (h *WizardHandler) Skip(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questionID := c.Param("questionId")

	if err := h.wizardService.SkipQuestion(ctx, sessionID, questionID); err != nil {
		respondSessionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	readiness, err := h.wizardService.Readiness(ctx, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReadinessResponse(readiness))
}

// Generate kicks off asynchronous deck generation and returns the deck
// record to poll.
func (h *WizardHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pitchDeck, err := h.wizardService.Generate(ctx, sessionID, req.DeckType, req.Tone)
	if err != nil {
		if errors.Is(err, service.ErrNotReady) {
			c.JSON(http.StatusConflict, gin.H{"error": "complete the first three steps before generating"})
			return
		}
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToDeckResponse(pitchDeck))
}

// DeckStatus returns the deck record with its generation log, for polling.
func (h *WizardHandler) DeckStatus(c *gin.Context) {
	ctx := c.Request.Context()

	deckID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pitchDeck, logs, err := h.wizardService.DeckStatus(ctx, deckID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load deck status", "error", err, "deck_id", deckID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deck"})
		return
	}

	c.JSON(http.StatusOK, dto.ToDeckStatusResponse(pitchDeck, logs))
}

func requireUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid user id"})
		return 0, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func respondSessionError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, wizard.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "session is already completed"})
	default:
		slog.ErrorContext(ctx, "wizard request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
