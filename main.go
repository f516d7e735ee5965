package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	. "hstin/ndprobe/helper"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"hstin/ndprobe/common"
	"hstin/ndprobe/observability"
	"hstin/ndprobe/probe"
	"hstin/ndprobe/sampler"
	"hstin/ndprobe/server"
	"hstin/ndprobe/weather"
)

func main() {

	godotenv.Load()

	app := &cli.App{
		Name:      "ndprobe - NDFD gridded forecast point probe",
		UsageText: "ndprobe [global options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "serve",
				Value:   false,
				Usage:   "Start the HTTP probe server",
				EnvVars: []string{"START_HTTP"},
			},
			&cli.StringFlag{
				Name:    "http-port",
				Value:   "8081",
				Usage:   "HTTP server port",
				EnvVars: []string{"HTTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "metrics-port",
				Value:   "9091",
				Usage:   "Prometheus metrics port",
				EnvVars: []string{"METRICS_PORT"},
			},
			&cli.BoolFlag{
				Name:  "list-elements",
				Usage: "Print the element catalog and exit",
			},
			&cli.BoolFlag{
				Name:    "cube",
				Usage:   "Treat inputs as FLX cube indexes instead of GRIB files",
				EnvVars: []string{"NDPROBE_CUBE"},
			},
			&cli.StringSliceFlag{
				Name:    "in",
				Aliases: []string{"i"},
				Usage:   "Forecast files or directories to probe",
				EnvVars: []string{"NDPROBE_IN"},
			},
			&cli.StringSliceFlag{
				Name:  "pnt",
				Usage: "Probe point as lat,lon (repeatable)",
			},
			&cli.StringFlag{
				Name:  "pnt-file",
				Usage: "Points file: label, lat, lon per line",
			},
			&cli.StringSliceFlag{
				Name:    "elements",
				Aliases: []string{"e"},
				Usage:   "Elements to probe (short names, e.g. MaxT); empty probes all",
				EnvVars: []string{"NDPROBE_ELEMENTS"},
			},
			&cli.StringSliceFlag{
				Name:  "sector",
				Usage: "Sector name fragments for directory expansion",
			},
			&cli.TimestampFlag{
				Name:   "valid-start",
				Usage:  "Drop records before this valid time",
				Layout: time.RFC3339,
			},
			&cli.TimestampFlag{
				Name:   "valid-end",
				Usage:  "Drop records after this valid time",
				Layout: time.RFC3339,
			},
			&cli.StringFlag{
				Name:  "interp",
				Value: "nearest",
				Usage: "Interpolation: nearest or bilinear",
			},
			&cli.StringFlag{
				Name:  "wx",
				Value: "ugly",
				Usage: "Weather rendering: ugly, english or simple",
			},
			&cli.IntFlag{
				Name:  "simple-ver",
				Value: 4,
				Usage: "Simple weather code table revision",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		Log.Error().Err(err).Msg("error")
		os.Exit(exitCode(err))
	}
}

func run(cCtx *cli.Context) error {

	if cCtx.Bool("list-elements") {
		printElements()
		return nil
	}

	prm, err := buildParams(cCtx)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	if cCtx.Bool("serve") {
		go observability.Serve(":" + cCtx.String("metrics-port"))
		server.StartServer(cCtx.String("http-port"), server.Options{
			Files:    cCtx.StringSlice("in"),
			FileType: prm.FileType,
			Metrics:  metrics,
		})
		return nil
	}

	matches, err := probe.Run(prm, metrics)
	if err != nil {
		return err
	}
	printMatches(matches)
	return nil
}

func buildParams(cCtx *cli.Context) (probe.Params, error) {
	var prm probe.Params

	prm.FileType = probe.TypeGRIB
	if cCtx.Bool("cube") {
		prm.FileType = probe.TypeCube
	}
	prm.Inputs = cCtx.StringSlice("in")
	prm.Sectors = cCtx.StringSlice("sector")
	prm.Conv = common.FileName
	prm.Stdin = os.Stdin

	points, err := gatherPoints(cCtx)
	if err != nil {
		return prm, err
	}
	prm.Kind = common.PointLatLon
	prm.Points = points
	if len(points) == 0 {
		prm.Kind = common.PointAllCells
	}

	varFilter := make([]int, int(common.NDFD_MATCHALL)+1)
	var requested []common.NDFDElement
	for _, name := range cCtx.StringSlice("elements") {
		elem := common.LookupElement(name, common.ShortName, true)
		if elem == common.NDFD_UNDEF {
			return prm, fmt.Errorf("unknown element %q", name)
		}
		requested = append(requested, elem)
	}
	prm.Elements = common.ComposeFilter(varFilter, requested)

	prm.Window = common.WindowFrom(cCtx.Timestamp("valid-start"), cCtx.Timestamp("valid-end"))

	switch cCtx.String("interp") {
	case "nearest":
		prm.Interp = sampler.Nearest
	case "bilinear":
		prm.Interp = sampler.Bilinear
	default:
		return prm, fmt.Errorf("unknown interpolation %q", cCtx.String("interp"))
	}

	switch cCtx.String("wx") {
	case "ugly":
		prm.WxMode = weather.Ugly
	case "english":
		prm.WxMode = weather.English
	case "simple":
		prm.WxMode = weather.Simple
	default:
		return prm, fmt.Errorf("unknown weather mode %q", cCtx.String("wx"))
	}
	prm.SimpleVer = cCtx.Int("simple-ver")

	return prm, nil
}

func gatherPoints(cCtx *cli.Context) ([]common.Point, error) {
	var points []common.Point

	if pntFile := cCtx.String("pnt-file"); pntFile != "" {
		pnts, err := common.ParsePointsFile(pntFile)
		if err != nil {
			return nil, err
		}
		points = append(points, common.Points(pnts)...)
	}

	for _, raw := range cCtx.StringSlice("pnt") {
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad point %q, expected lat,lon", raw)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", raw, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", raw, err)
		}
		points = append(points, common.Point{X: lon, Y: lat})
	}

	return points, nil
}

func printElements() {
	fmt.Println("short, file, terse, unit")
	for i := 0; i < common.NumElements; i++ {
		e := common.NDFDElement(i)
		fmt.Printf("%s, %s, %s, %s\n",
			common.ElementName(e, common.ShortName),
			common.ElementName(e, common.FileName),
			common.ElementName(e, common.TerseName),
			common.ElementUnit(e))
	}
}

func printMatches(matches []common.Match) {
	for _, m := range matches {
		values := make([]string, len(m.Values))
		for i, v := range m.Values {
			values[i] = v.String()
		}
		fmt.Printf("%s[%s], %s, %s, %s\n",
			common.ElementName(m.Element.Elem, common.ShortName),
			m.Unit,
			m.RefTime.UTC().Format(time.RFC3339),
			m.ValidTime.UTC().Format(time.RFC3339),
			strings.Join(values, ", "))
	}
}

func exitCode(err error) int {
	if err == probe.ErrNoInputs {
		return 2
	}
	return 1
}
