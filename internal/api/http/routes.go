package httpapi

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-chatbot/internal/chatbot"
)

var validate = validator.New()

const coordinatePrefix = "@coordenadas:"

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, bot *chatbot.Bot) {
	app.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Formato de solicitud inválido",
			})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Formato de solicitud inválido",
			})
		}

		message := strings.TrimSpace(req.Message)

		if strings.HasPrefix(message, coordinatePrefix) {
			return handleCoordinates(c, bot, message, req.Accuracy)
		}

		reply := bot.ProcessMessage(c.UserContext(), message)
		return c.JSON(fiber.Map{"respuesta": reply.Payload()})
	})
}

// handleCoordinates serves the "@coordenadas:<lat>,<lon>" input mode. The
// pair is validated before any network call happens.
func handleCoordinates(c *fiber.Ctx, bot *chatbot.Bot, message string, accuracy float64) error {
	pair, err := parseCoordinates(message)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"respuesta": "Formato de coordenadas inválido. Por favor, inténtalo de nuevo.",
		})
	}

	if accuracy > 0 {
		log.Printf("gps accuracy for %.6f,%.6f: ±%.0fm", pair.Lat, pair.Lon, accuracy)
	}

	result, err := bot.WeatherByCoordinates(c.UserContext(), pair.Lat, pair.Lon)
	if err != nil {
		var se *chatbot.ServiceError
		if errors.As(err, &se) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"respuesta": "Error al obtener el clima: " + se.Err.Error(),
			})
		}
		log.Printf("coordinate weather lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"respuesta": "Error al procesar tu ubicación. Por favor, inténtalo de nuevo.",
		})
	}
	return c.JSON(fiber.Map{"respuesta": result})
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message  string  `json:"mensaje" validate:"required"`
	Accuracy float64 `json:"accuracy" validate:"gte=0"`
}

// coordinatePair carries the range constraints for the alternate input mode.
type coordinatePair struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordinates(message string) (coordinatePair, error) {
	var pair coordinatePair

	raw := strings.TrimPrefix(message, coordinatePrefix)
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return pair, &chatbot.InputError{Message: "formato de coordenadas inválido"}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return pair, &chatbot.InputError{Message: "latitud inválida"}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return pair, &chatbot.InputError{Message: "longitud inválida"}
	}

	pair.Lat = lat
	pair.Lon = lon
	if err := validate.Struct(pair); err != nil {
		return pair, &chatbot.InputError{Message: "coordenadas fuera de rango"}
	}
	return pair, nil
}
