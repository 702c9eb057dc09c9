package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
	"github.com/kursadbilgin/cosmos-provisioner/internal/observability"
	"github.com/kursadbilgin/cosmos-provisioner/internal/transport"
)

// AccountService is the orchestration surface the HTTP layer depends on.
type AccountService interface {
	SubmitCreate(ctx context.Context, req domain.AccountRequest) (domain.AccountStatus, error)
	SubmitDelete(ctx context.Context, accountName string) error
	Status(ctx context.Context, accountName string) (domain.AccountStatus, error)
}

type AccountHandler struct {
	service AccountService
}

func NewAccountHandler(service AccountService) (*AccountHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("account service is required")
	}
	return &AccountHandler{service: service}, nil
}

func RegisterAccountRoutes(router fiber.Router, service AccountService) error {
	h, err := NewAccountHandler(service)
	if err != nil {
		return err
	}

	router.Post("/accounts", h.CreateAccount)
	router.Get("/accounts/:accountName", h.GetAccountStatus)
	router.Delete("/accounts/:accountName", h.DeleteAccount)

	return nil
}

type createAccountRequest struct {
	AccountName string `json:"account_name"`
	Location    string `json:"location"`
	APIType     string `json:"api_type"`
}

type accountStatusResponse struct {
	AccountName string    `json:"account_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Message     string    `json:"message,omitempty"`
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return transport.NewAPIError(fiber.StatusBadRequest, transport.CodeValidationError, "invalid request body")
	}

	apiKind, err := domain.ParseAPIKindFromString(req.APIType)
	if err != nil {
		return toHTTPError(err)
	}

	accountReq := domain.AccountRequest{
		Name:     strings.TrimSpace(req.AccountName),
		Location: strings.TrimSpace(req.Location),
		APIKind:  apiKind,
	}
	if err := accountReq.Validate(); err != nil {
		return toHTTPError(err)
	}

	record, err := h.service.SubmitCreate(requestContext(c), accountReq)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(toStatusResponse(record))
}

func (h *AccountHandler) GetAccountStatus(c *fiber.Ctx) error {
	accountName := strings.TrimSpace(c.Params("accountName"))
	record, err := h.service.Status(requestContext(c), accountName)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toStatusResponse(record))
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	accountName := strings.TrimSpace(c.Params("accountName"))
	if err := h.service.SubmitDelete(requestContext(c), accountName); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// requestContext carries the client's X-Request-ID (or a generated one) so
// the background flow can keep logging it.
func requestContext(c *fiber.Ctx) context.Context {
	correlationID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return observability.WithCorrelationID(c.Context(), correlationID)
}

func toStatusResponse(record domain.AccountStatus) accountStatusResponse {
	return accountStatusResponse{
		AccountName: record.AccountName,
		Status:      record.Status.String(),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		Message:     record.Message,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return transport.NewAPIError(fiber.StatusBadRequest, transport.CodeValidationError, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return transport.NewAPIError(fiber.StatusNotFound, transport.CodeAccountNotFound, err.Error())
	case errors.Is(err, domain.ErrProvider):
		return transport.NewAPIError(fiber.StatusInternalServerError, transport.CodeAzureError, err.Error())
	default:
		return err
	}
}
