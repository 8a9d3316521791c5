package http

import (
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/catalog"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/savings"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/service"
)

const (
	calculationError  = "calculation error"
	maxSearchLimit    = 100
	defaultSearchSize = 20
)

// NewApp builds the fiber app with middleware and every route.
func NewApp(svcs *service.Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "drive-savings-calculator",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(RequestLogger())

	Register(app, svcs)
	return app
}

// RequestLogger logs one line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()

		ev := log.Info()
		if err != nil || status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

func Register(app *fiber.App, svcs *service.Services) {
	g := app.Group("/")

	g.Get("health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	g.Post("calculate", func(c *fiber.Ctx) error {
		res, err := svcs.Calculator.FlatRate(c.Body())
		if err != nil {
			return decodeFailure(c, err)
		}
		return c.JSON(res)
	})
	g.Post("calculate-load-profile", func(c *fiber.Ctx) error {
		res, err := svcs.Calculator.LoadProfile(c.Body())
		if err != nil {
			return decodeFailure(c, err)
		}
		return c.JSON(res)
	})

	g.Get("presets", func(c *fiber.Ctx) error {
		return c.JSON(savings.FlatRatePresets())
	})
	g.Get("load-profile-presets", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"presets":    savings.LoadProfilePresets(),
			"flowLevels": savings.FlowLevels(),
		})
	})

	g.Post("chat", func(c *fiber.Ctx) error {
		var req struct {
			Message string          `json:"message"`
			Context json.RawMessage `json:"context"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if strings.TrimSpace(req.Message) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
		}
		return c.JSON(fiber.Map{"response": svcs.Chat.Reply(c.UserContext(), req.Message, req.Context)})
	})

	g.Get("history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"history": svcs.History.Recent(c.UserContext())})
	})
	g.Get("history/summary", func(c *fiber.Ctx) error {
		return c.JSON(svcs.History.Summary(c.UserContext()))
	})

	g.Get("products/search", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
		}
		limit := c.QueryInt("limit", defaultSearchSize)
		if limit <= 0 || limit > maxSearchLimit {
			limit = defaultSearchSize
		}
		return c.JSON(svcs.Catalog.Search(c.UserContext(), q, limit))
	})
	g.Post("products/recommendations", func(c *fiber.Ctx) error {
		var req catalog.RecommendationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.HPPerMotor <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hpPerMotor must be greater than 0"})
		}
		return c.JSON(fiber.Map{"recommendations": svcs.Catalog.Recommendations(c.UserContext(), req)})
	})
	g.Post("products/package-price", func(c *fiber.Ctx) error {
		var req struct {
			SKUs []string `json:"skus"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		return c.JSON(svcs.Catalog.PackagePrice(c.UserContext(), req.SKUs))
	})

	g.Post("reports", func(c *fiber.Ctx) error {
		out, err := svcs.Reports.Generate(c.UserContext(), c.Body())
		if err != nil {
			return decodeFailure(c, err)
		}
		if out.Archived() {
			return c.JSON(fiber.Map{"key": out.Key, "url": out.URL})
		}
		c.Type("html", "utf-8")
		return c.Send(out.HTML)
	})
	g.Get("reports", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reports": svcs.Reports.List(c.UserContext(), c.Query("prefix"))})
	})
}

// decodeFailure answers 422 with the offending fields for a strict
// validation failure and the generic 400 otherwise.
func decodeFailure(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  calculationError,
			"fields": verr.Fields,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": calculationError})
}
