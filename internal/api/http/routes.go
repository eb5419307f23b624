package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *aod.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/aod/live", func(c *fiber.Ctx) error {
		var req liveQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.FetchLive(c.Context(), req.City, req.Date)
		if err != nil {
			return fiberError(err)
		}

		return c.JSON(reading)
	})

	v1.Get("/aod/latest", func(c *fiber.Ctx) error {
		city, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.Latest(city)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no aod data for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch aod data")
		}

		return c.JSON(reading)
	})

	v1.Get("/aod/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := service.Range(req.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no aod history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch aod history")
		}

		return c.JSON(fiber.Map{
			"city":     req.City,
			"from":     req.From,
			"to":       req.To,
			"readings": readings,
		})
	})
}

// fiberError maps pipeline error kinds to client-facing statuses:
// lookup/data failures are "not found"-class, auth/configuration are
// server-side errors, transport failures are upstream errors.
func fiberError(err error) error {
	switch aod.KindOf(err) {
	case aod.KindLookup, aod.KindData:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case aod.KindTransport:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case aod.KindConfiguration, aod.KindAuth:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// cityQuery holds the query parameter identifying a city.
type cityQuery struct {
	City string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx) (string, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return q.City, nil
}

// liveQuery holds query parameters for the live fetch endpoint.
type liveQuery struct {
	City string `validate:"required"`
	Date time.Time
}

func (l *liveQuery) bind(c *fiber.Ctx) error {
	city, err := parseCityQuery(c)
	if err != nil {
		return err
	}
	l.City = city

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := parseTime(dateStr)
		if err != nil {
			return err
		}
		l.Date = date
	}
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	city, err := parseCityQuery(c)
	if err != nil {
		return err
	}
	h.City = city

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries RFC3339, a plain calendar date, or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
