// Package serverless adapts the shortener to API Gateway proxy events.
package serverless

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"shorty/internal/domain"
	"shorty/internal/service"
	"shorty/pkg/logger"
)

// Handler routes API Gateway requests to the shortener
type Handler struct {
	service         service.LinkService
	apiKeyMandatory bool
	logger          *logger.Logger
}

// NewHandler creates a serverless handler
func NewHandler(service service.LinkService, apiKeyMandatory bool, logger *logger.Logger) *Handler {
	return &Handler{
		service:         service,
		apiKeyMandatory: apiKeyMandatory,
		logger:          logger,
	}
}

// Handle dispatches on method and the last path segment:
// GET /<id> resolves, POST / shortens, anything else is a 400
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	segment := lastSegment(req.Path)

	switch {
	case req.HTTPMethod == http.MethodGet && segment != "" && req.Body == "":
		return h.goTo(ctx, segment), nil
	case req.HTTPMethod == http.MethodPost && segment == "" && req.Body != "":
		return h.shorten(ctx, req), nil
	default:
		h.logger.Errorw("Unable to handle request", "path", req.Path, "method", req.HTTPMethod)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
	}
}

func (h *Handler) goTo(ctx context.Context, id string) events.APIGatewayProxyResponse {
	h.logger.Debugw("Resolving id", "id", id)

	url, ok := h.service.Lookup(ctx, id)
	if !ok {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers:    map[string]string{"Location": url},
	}
}

func (h *Handler) shorten(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body domain.ShortenRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil || body.URL == "" {
		msg := "url is required"
		if err != nil {
			msg = err.Error()
		}
		return h.jsonResponse(http.StatusBadRequest, domain.ErrorResponse{
			Kind:    domain.KindInvalidRequest,
			Message: "Invalid request body: " + msg,
		})
	}

	if body.APIKey == nil && h.apiKeyMandatory {
		return h.jsonResponse(http.StatusForbidden, domain.ErrorResponse{
			Kind:    domain.KindInvalidAPIKey.String(),
			Message: domain.MissingAPIKeyMessage,
		})
	}

	body.RequestHost = header(req.Headers, "Host")

	result, err := h.service.Shorten(ctx, body)
	if err != nil {
		kind := domain.KindOf(err)
		if kind.Internal() {
			h.logger.Errorw("Shorten failed", "kind", kind.String(), "error", err)
		}
		return h.jsonResponse(kind.StatusCode(), domain.NewErrorResponse(err))
	}

	return h.jsonResponse(http.StatusOK, result)
}

func (h *Handler) jsonResponse(status int, v interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Errorw("Failed to render response", "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// header looks up name case-insensitively; API Gateway keeps client casing
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
