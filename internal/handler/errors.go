package handler

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates that the request query string could
// not be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrSizeRequired is returned when the signed order size is missing or zero.
var ErrSizeRequired = fiber.NewError(fiber.StatusBadRequest, "non-zero size is required")

// ErrSizeNonPositive is returned when the order size is zero or negative.
var ErrSizeNonPositive = fiber.NewError(fiber.StatusBadRequest, "size must be greater than zero")

// ErrInvalidGrid is returned when the curve grid parameters are unusable.
var ErrInvalidGrid = fiber.NewError(fiber.StatusBadRequest, "invalid grid parameters")

// ErrPricingFailedInternal signals a generic server-side pricing error.
var ErrPricingFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "pricing failed")
