package handlers

import (
	"net/http"

	"EstateHub/models"
	"EstateHub/services"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (pc *PaymentController) History(c echo.Context) error {
	page, limit := utils.ParsePage(c)
	payments, total, err := pc.service.History(c.Request().Context(), currentUser(c).ID, page, limit)
	if err != nil {
		return utils.Internal("Failed to fetch payment history", err)
	}
	return utils.SuccessList(c, payments, utils.NewPagination(total, page, limit))
}

func (pc *PaymentController) Create(c echo.Context) error {
	var req models.CreatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	payment, err := pc.service.Initiate(c.Request().Context(), currentUser(c).ID, req)
	if err != nil {
		return apiError(err, "Property not found", "Failed to create payment")
	}
	return utils.Success(c, http.StatusCreated, payment, "Payment initiated")
}

func (pc *PaymentController) Complete(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), "payment")
	if err != nil {
		return err
	}
	payment, err := pc.service.Complete(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return apiError(err, "Payment not found", "Failed to complete payment")
	}
	return utils.Success(c, http.StatusOK, payment, "Payment completed")
}

func (pc *PaymentController) Fail(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), "payment")
	if err != nil {
		return err
	}
	payment, err := pc.service.Fail(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return apiError(err, "Payment not found", "Failed to update payment")
	}
	return utils.Success(c, http.StatusOK, payment, "Payment marked as failed")
}
