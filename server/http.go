package server

import (
	"fmt"
	"strings"
	"time"

	. "hstin/ndprobe/helper"

	"github.com/gofiber/fiber/v2"
	"github.com/xhhuango/json"
	"github.com/zsefvlol/timezonemapper"

	"hstin/ndprobe/common"
	"hstin/ndprobe/observability"
	"hstin/ndprobe/probe"
	"hstin/ndprobe/sampler"
	"hstin/ndprobe/weather"
)

// Options configures the probe server: the forecast files every request is
// resolved against.
type Options struct {
	Files    []string
	FileType probe.FileType
	Metrics  *observability.Metrics
}

// MatchResponse is one resolved record for the probed point.
type MatchResponse struct {
	Element   string `json:"element"`
	RefTime   int64  `json:"ref_time"`
	ValidTime int64  `json:"valid_time"`
	Unit      string `json:"unit"`
	Value     string `json:"value"`
}

// ProbeResponse mirrors the CLI probe output for one point.
type ProbeResponse struct {
	CalculationTime int64           `json:"calculation_time"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	Timezone        string          `json:"timezone"`
	Matches         []MatchResponse `json:"matches"`
}

// StartServer serves point probes over HTTP until the listener fails.
func StartServer(port string, opt Options) {
	app := NewApp(opt)

	Log.Info().Msg("HTTP server started on port " + port)

	Log.Fatal().Err(app.Listen(":" + port)).Msg("Failed to start HTTP server")
}

// NewApp builds the fiber application serving /probe.
func NewApp(opt Options) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
		ServerHeader:          "ndprobe",
	})

	app.Get("/probe", func(c *fiber.Ctx) error {
		startCalculation := time.Now()

		latitude := c.QueryFloat("lat")
		if latitude < -90 || latitude > 90 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid latitude"})
		}
		longitude := c.QueryFloat("lng")
		if longitude < -180 || longitude > 180 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid longitude"})
		}

		elements, err := requestedElements(c.Query("elements"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		interp := sampler.Nearest
		if c.Query("interp") == "bilinear" {
			interp = sampler.Bilinear
		}

		matches, err := probe.Run(probe.Params{
			FileType: opt.FileType,
			Inputs:   opt.Files,
			Kind:     common.PointLatLon,
			Points:   []common.Point{{X: longitude, Y: latitude}},
			Elements: elements,
			Interp:   interp,
			WxMode:   weather.English,
		}, opt.Metrics)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error probing data"})
		}

		out := make([]MatchResponse, 0, len(matches))
		for _, m := range matches {
			out = append(out, MatchResponse{
				Element:   common.ElementName(m.Element.Elem, common.ShortName),
				RefTime:   m.RefTime.Unix(),
				ValidTime: m.ValidTime.Unix(),
				Unit:      m.Unit,
				Value:     m.Values[0].String(),
			})
		}

		return c.JSON(ProbeResponse{
			CalculationTime: time.Since(startCalculation).Microseconds(),
			Latitude:        latitude,
			Longitude:       longitude,
			Timezone:        timezonemapper.LatLngToTimezoneString(latitude, longitude),
			Matches:         out,
		})
	})

	return app
}

// requestedElements resolves the comma-separated element names of the query
// into filter descriptors; an empty query probes everything.
func requestedElements(query string) ([]common.ElementDescriptor, error) {
	varFilter := make([]int, int(common.NDFD_MATCHALL)+1)
	var requested []common.NDFDElement
	for _, name := range strings.FieldsFunc(query, func(r rune) bool { return r == ',' }) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		elem := common.LookupElement(name, common.ShortName, true)
		if elem == common.NDFD_UNDEF {
			return nil, fmt.Errorf("unknown element %q", name)
		}
		requested = append(requested, elem)
	}
	return common.ComposeFilter(varFilter, requested), nil
}
