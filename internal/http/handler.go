package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"horizonte-forms/internal/service"
)

type Handler struct {
	service *service.Service
}

type ProblemDetails struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	problemContentType      = "application/problem+json"
	problemTypeValidation   = "https://horizonteglobal.org/problems/validation-error"
	problemTypeNotFound     = "https://horizonteglobal.org/problems/not-found"
	problemTypeConflict     = "https://horizonteglobal.org/problems/conflict"
	problemTypeInternal     = "https://horizonteglobal.org/problems/internal-error"
	problemTypeInvalidParam = "https://horizonteglobal.org/problems/invalid-parameter"
)

const (
	headerRequestID = "X-Request-ID"
	headerClientID  = "X-Client-ID"
	queryFieldID    = "field_id"
)

var kindPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func NewRouter(service *service.Service, serviceName string) *gin.Engine {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "horizonte-forms-api"
	}
	registerBindingValidators()

	router := gin.New()
	h := &Handler{service: service}
	router.Use(
		requestid.New(),
		panicRecoveryMiddleware(slog.Default()),
		otelgin.Middleware(serviceName),
		requestObservabilityMiddleware(slog.Default()),
	)

	api := router.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/health", h.health)

	v1.GET("/validations", h.listValidators)
	v1.POST("/validations/:kind", h.validate)
	v1.POST("/forms/validate", h.validateForm)
	v1.POST("/passwords/strength", h.passwordStrength)
	v1.POST("/files/validate", h.validateFile)
	v1.POST("/masks/:kind", h.applyMask)
	v1.GET("/cep/:cep", h.lookupCEP)

	v1.POST("/contact", h.submitContact)
	v1.POST("/donors", h.submitDonor)

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listValidators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"validators": h.service.ValidatorNames()})
}

func (h *Handler) validate(c *gin.Context) {
	kind, err := parseKind(c, "kind")
	if err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeInvalidParam, "Invalid Parameter", err.Error())
		return
	}

	var input service.ValueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	result, err := h.service.Validate(c.Request.Context(), kind, input.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(contextKeyFormKind, kind)

	c.JSON(http.StatusOK, result)
}

func (h *Handler) validateForm(c *gin.Context) {
	var input service.ValidateFieldsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	output, err := h.service.ValidateFields(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

func (h *Handler) passwordStrength(c *gin.Context) {
	var input service.PasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.service.PasswordStrength(c.Request.Context(), input))
}

func (h *Handler) validateFile(c *gin.Context) {
	var input service.FileValidationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	result, err := h.service.ValidateFile(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) applyMask(c *gin.Context) {
	kind, err := parseKind(c, "kind")
	if err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeInvalidParam, "Invalid Parameter", err.Error())
		return
	}

	var input service.ValueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	output, err := h.service.ApplyMask(c.Request.Context(), kind, input.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(contextKeyFormKind, kind)

	c.JSON(http.StatusOK, output)
}

// lookupCEP accepts an optional field_id query parameter, which requires the
// X-Client-ID header naming the visitor session. When present, a response
// for a CEP that was replaced on that field in the meantime is answered
// with 409.
func (h *Handler) lookupCEP(c *gin.Context) {
	output, err := h.service.LookupCEP(c.Request.Context(), service.CEPLookupInput{
		ClientID: c.GetHeader(headerClientID),
		FieldID:  c.Query(queryFieldID),
		CEP:      c.Param("cep"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

func (h *Handler) submitContact(c *gin.Context) {
	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	output, err := h.service.SubmitContact(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, output)
}

func (h *Handler) submitDonor(c *gin.Context) {
	var input service.DonorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	output, err := h.service.SubmitDonor(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, output)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.writeProblem(c, http.StatusBadRequest, problemTypeValidation, "Validation Error", err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.writeProblem(c, http.StatusNotFound, problemTypeNotFound, "Not Found", err.Error())
	case errors.Is(err, service.ErrConflict):
		h.writeProblem(c, http.StatusConflict, problemTypeConflict, "Conflict", err.Error())
	default:
		_ = c.Error(err)
		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, "internal server error")
			span.SetAttributes(
				attribute.Bool("error", true),
				attribute.String("error.type", classifyErrorType(err)),
			)
		}
		logAttrs := []any{
			"error", err.Error(),
			"error_type", classifyErrorType(err),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"request_id", requestid.Get(c),
		}
		logAttrs = appendSpanAttrs(logAttrs, span.SpanContext())
		slog.ErrorContext(c.Request.Context(), "internal server error", logAttrs...)
		h.writeProblem(c, http.StatusInternalServerError, problemTypeInternal, "Internal Server Error", "internal server error")
	}
}

func (h *Handler) writeProblem(c *gin.Context, status int, problemType string, title string, detail string) {
	writeProblemResponse(c, status, problemType, title, detail)
}

func writeProblemResponse(c *gin.Context, status int, problemType string, title string, detail string) {
	if problemType == "" {
		problemType = "about:blank"
	}
	if title == "" {
		title = http.StatusText(status)
	}

	requestID := requestid.Get(c)
	if requestID != "" {
		c.Header(headerRequestID, requestID)
	}

	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(status, ProblemDetails{
		Type:      problemType,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  c.FullPath(),
		RequestID: requestID,
	})
}

func classifyErrorType(err error) string {
	if err == nil {
		return "unknown"
	}
	root := err
	for {
		unwrapped := errors.Unwrap(root)
		if unwrapped == nil {
			break
		}
		root = unwrapped
	}
	return fmt.Sprintf("%T", root)
}

func parseKind(c *gin.Context, param string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(c.Param(param)))
	if !kindPattern.MatchString(kind) {
		return "", fmt.Errorf("invalid parameter %q: must be a lowercase identifier", param)
	}
	return kind, nil
}
