package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/0x0FACED/go-dosemap/pkg/measure"
	"github.com/0x0FACED/go-dosemap/pkg/meshio"
	"github.com/0x0FACED/go-dosemap/pkg/render"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

type options struct {
	file     string
	snapshot bool
	at       []string
	png      string
	cols     int
	cell     int
	save     string
	codec    string
	check    bool
	strategy string
	logLevel string
	verbose  bool
	noColor  bool
}

func newApp() (*kingpin.Application, *options) {
	o := &options{}
	app := kingpin.New("dosemap", "Триангуляция измерений матрицы детекторов и интерполяция дозы.")

	app.Arg("file", "Измерение (MCC или строки \"x y доза\") либо снимок сетки с --from-snapshot.").Required().StringVar(&o.file)
	app.Flag("from-snapshot", "Файл - снимок сетки, записанный --snapshot.").BoolVar(&o.snapshot)
	app.Flag("at", "Точка запроса x,y (можно повторять).").StringsVar(&o.at)
	app.Flag("png", "Записать карту дозы в PNG.").PlaceHolder("FILE").StringVar(&o.png)
	app.Flag("cols", "Ширина растра в ячейках.").Default("200").Envar("DOSEMAP_COLS").IntVar(&o.cols)
	app.Flag("cell", "Размер ячейки растра в пикселях.").Default("3").Envar("DOSEMAP_CELL").IntVar(&o.cell)
	app.Flag("snapshot", "Записать снимок сетки.").PlaceHolder("FILE").StringVar(&o.save)
	app.Flag("codec", "Сжатие снимка: none, zstd, lz4.").Default("zstd").Envar("DOSEMAP_CODEC").EnumVar(&o.codec, "none", "zstd", "lz4")
	app.Flag("check", "Проверить инварианты триангуляции.").BoolVar(&o.check)
	app.Flag("strategy", "Поиск треугольника: walk или scan.").Default("walk").Envar("DOSEMAP_STRATEGY").EnumVar(&o.strategy, "walk", "scan")
	app.Flag("log-level", "Уровень логирования.").Default("warn").Envar("DOSEMAP_LOG_LEVEL").EnumVar(&o.logLevel, "debug", "info", "warn", "error")
	app.Flag("verbose", "Писать логи в stderr.").Short('v').Envar("DOSEMAP_VERBOSE").BoolVar(&o.verbose)
	app.Flag("no-color", "Без цвета.").BoolVar(&o.noColor)

	return app, o
}

func parsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "point %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "point %q", s)
	}
	return x, y, nil
}

func run(args []string, out io.Writer) error {
	app, o := newApp()
	if _, err := app.Parse(args); err != nil {
		return err
	}

	au := aurora.NewAurora(!o.noColor)
	log := logger.New(logger.Config{Level: o.logLevel, Console: o.verbose})
	defer log.Sync()

	strategy := delaunay.StrategyWalk
	if o.strategy == "scan" {
		strategy = delaunay.StrategyScan
	}
	triOpts := []delaunay.Option{delaunay.WithLogger(log), delaunay.WithStrategy(strategy)}

	var (
		m   *measure.Measurement
		tri *delaunay.Triangulation
		err error
	)
	if o.snapshot {
		f, err := os.Open(o.file)
		if err != nil {
			return errors.Wrap(err, "open snapshot")
		}
		tri, err = meshio.Load(f, meshio.WithLogger(log), meshio.WithTriangulationOptions(triOpts...))
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "%s", o.file)
		}
	} else {
		if m, err = measure.Open(o.file); err != nil {
			return err
		}
		if tri, err = delaunay.Triangulate(m.Nodes(), triOpts...); err != nil {
			return errors.Wrapf(err, "%s", o.file)
		}
	}
	defer tri.Free()

	fmt.Fprintf(out, "%s %s\n", au.Bold(au.Cyan("file")), o.file)
	fmt.Fprintf(out, "  nodes      %d\n", tri.NumNodes())
	fmt.Fprintf(out, "  triangles  %d (%d records)\n", len(tri.Triangles()), tri.Len())
	fmt.Fprintf(out, "  hull       %d\n", len(tri.Hull()))
	if m != nil {
		fmt.Fprintf(out, "  scans      %d\n", len(m.Scans))
		fmt.Fprintf(out, "  max dose   %.4f\n", m.Max())
		fmt.Fprintf(out, "  sum        %.4f\n", m.Sum())
		fmt.Fprintf(out, "  support    %d\n", m.Support(0.1))
	}

	if o.check {
		if err := tri.Validate(); err != nil {
			fmt.Fprintf(out, "%s %v\n", au.Red("check"), err)
			return err
		}
		fmt.Fprintf(out, "%s ok\n", au.Green("check"))
	}

	for _, s := range o.at {
		x, y, err := parsePoint(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%g, %g)", au.Bold("at"), x, y)
		if v, ok := tri.Interpolate(x, y); ok {
			fmt.Fprintf(out, "  mesh %.4f", v)
		} else {
			fmt.Fprintf(out, "  mesh %s", au.Yellow("outside"))
		}
		if m != nil {
			if v, ok := m.PointDose(x, y); ok {
				fmt.Fprintf(out, "  scans %.4f", v)
			} else {
				fmt.Fprintf(out, "  scans %s", au.Yellow("outside"))
			}
		}
		fmt.Fprintln(out)
	}

	if o.png != "" {
		if err := writePNG(o, tri, log); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", au.Green("png"), o.png)
	}

	if o.save != "" {
		codec, err := meshio.ParseCodec(o.codec)
		if err != nil {
			return err
		}
		f, err := os.Create(o.save)
		if err != nil {
			return errors.Wrap(err, "create snapshot")
		}
		err = meshio.Save(f, tri, meshio.WithCodec(codec), meshio.WithLogger(log))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "%s", o.save)
		}
		fmt.Fprintf(out, "%s %s (%s)\n", au.Green("snapshot"), o.save, codec)
	}

	return nil
}

func writePNG(o *options, tri *delaunay.Triangulation, log *logger.ZapLogger) error {
	points := make([][2]float64, tri.NumNodes())
	for i := range points {
		p, _ := tri.Node(int32(i))
		points[i] = [2]float64{p.X, p.Y}
	}

	raster, err := render.Sample(context.Background(), tri, render.GridFor(points, o.cols), render.WithLogger(log))
	if err != nil {
		return err
	}
	log.Info("[cli] Растр построен", zap.Int("cols", raster.Cols), zap.Int("rows", raster.Rows), zap.Float64("coverage", raster.Coverage()))

	f, err := os.Create(o.png)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	err = render.PNG(f, raster, render.Style{CellSize: o.cell, Mesh: tri})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "%s", o.png)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red("dosemap:"), err)
		os.Exit(1)
	}
}
