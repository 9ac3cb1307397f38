package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/urbanplatform/onboarding/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the operator-facing handlers into the Fiber app. The
// API is read-only run history; weather data itself is never served.
func RegisterRoutes(app *fiber.App, runs *store.MemoryStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		latest, err := runs.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNoRuns) {
				return fiber.NewError(fiber.StatusNotFound, "no import runs recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}
		return c.JSON(latest)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req runsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"runs": runs.Recent(req.Limit),
		})
	})
}

// runsQuery holds query parameters for the run history endpoint.
type runsQuery struct {
	Limit int `validate:"required,gte=1,lte=100"`
}

func (r *runsQuery) bind(c *fiber.Ctx) error {
	r.Limit = 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		r.Limit = n
	}
	return nil
}
