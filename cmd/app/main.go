package main

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/0x0FACED/go-dosemap/pkg/measure"
	"github.com/0x0FACED/go-dosemap/pkg/render"
	"github.com/0x0FACED/go-dosemap/pkg/voronoi"
	"github.com/0x0FACED/go-dosemap/static"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var (
	addr     = kingpin.Flag("addr", "Адрес HTTP сервера.").Default(":8080").Envar("DOSEMAP_ADDR").String()
	rps      = kingpin.Flag("rate", "Запросов в секунду.").Default("5").Envar("DOSEMAP_RATE").Float64()
	burst    = kingpin.Flag("burst", "Размер всплеска запросов.").Default("10").Envar("DOSEMAP_BURST").Int()
	logLevel = kingpin.Flag("log-level", "Уровень логирования.").Default("debug").Envar("DOSEMAP_LOG_LEVEL").Enum("debug", "info", "warn", "error")
	console  = kingpin.Flag("console", "Дублировать логи в stderr.").Envar("DOSEMAP_CONSOLE").Bool()
	gridCols = kingpin.Flag("grid", "Размер сетки интерполяции на странице.").Default("24").Envar("DOSEMAP_GRID").Int()
	dataDir  = kingpin.Flag("data-dir", "Каталог с файлами измерений; без него поле файла отключено.").Envar("DOSEMAP_DATA_DIR").String()
)

var (
	errDataDisabled = errors.New("app: measurement files are disabled")
	errDataPath     = errors.New("app: no such measurement in the data directory")
)

type Station struct {
	X, Y float64
	Dose float64
}

// Генерируем случайные точки для детекторов
func generateRandStations(n int, width, height int) []Station {
	stations := make([]Station, n)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < n; i++ {
		stations[i] = Station{
			X: float64(r.Intn(width)),
			Y: float64(r.Intn(height)),
		}
	}
	return stations
}

func generateFixStations(n int, width, height int) []Station {
	stations := make([]Station, 0, n)

	rows := int(math.Sqrt(float64(n)))
	cols := (n + rows - 1) / rows

	xStep := float64(width) / float64(cols)
	yStep := float64(height) / float64(rows)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// строк и столбцов может быть больше, чем детекторов
			if len(stations) < n {
				x := xStep/2 + float64(j)*xStep
				y := yStep/2 + float64(i)*yStep
				stations = append(stations, Station{X: x, Y: y})
			} else {
				break
			}
		}
	}

	return stations
}

// Гауссов пучок с центром в середине поля, sigma - доля ширины
func applyBeam(stations []Station, width, height int, sigma float64) {
	cx, cy := float64(width)/2, float64(height)/2
	s := sigma * float64(width)
	if s <= 0 {
		s = 1
	}
	for i := range stations {
		dx, dy := stations[i].X-cx, stations[i].Y-cy
		stations[i].Dose = 100 * math.Exp(-(dx*dx+dy*dy)/(2*s*s))
	}
}

// Станции с одинаковыми координатами триангуляция не примет
func dedupStations(stations []Station) []Station {
	seen := make(map[[2]float64]struct{}, len(stations))
	out := stations[:0]
	for _, s := range stations {
		k := [2]float64{s.X, s.Y}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// openMeasurement reads name inside dir only. Names leaving the directory
// and missing files give the same error.
func openMeasurement(dir, name string) (*measure.Measurement, error) {
	if dir == "" {
		return nil, errDataDisabled
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, errors.Wrap(err, "data dir")
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, errDataPath
	}
	defer f.Close()

	if st, err := f.Stat(); err != nil || !st.Mode().IsRegular() {
		return nil, errDataPath
	}
	return measure.Read(f)
}

func stationsFromMeasurement(m *measure.Measurement) []Station {
	nodes := m.Nodes()
	out := make([]Station, 0, len(nodes)/3)
	for i := 0; i+2 < len(nodes); i += 3 {
		out = append(out, Station{X: nodes[i], Y: nodes[i+1], Dose: nodes[i+2]})
	}
	return out
}

func prepareScatter(scatter *charts.Scatter, title string, maxDose float64) {
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Height: "580px",
			Width:  "1020px",
		}),
		charts.WithLegendOpts(opts.Legend{
			TextStyle: &opts.TextStyle{
				Color: "white",
			},
			Right: "10%",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:                title,
			TitleBackgroundColor: "white",
			Left:                 "10%",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "X",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "Y",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        0,
			Max:        float32(maxDose),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#3030d0", "#20c0e0", "#30c040", "#f0e030", "#e03020"},
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "horizontal",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "vertical",
		}),
	)
}

func segmentLine(name string, color string, a, b [2]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(true)}),
	)
	line.AddSeries(name, []opts.LineData{
		{Value: []float64{a[0], a[1]}},
		{Value: []float64{b[0], b[1]}},
	}).SetSeriesOptions(
		charts.WithLineStyleOpts(opts.LineStyle{
			Width: 1,
			Color: color,
		}),
	)
	return line
}

// Триангуляцию, интерполяцию и диаграмму Вороного переводим в Echarts
func doseToEcharts(stations []Station, tri *delaunay.Triangulation, raster *render.Raster, diagram *voronoi.Diagram) *charts.Scatter {
	scatter := charts.NewScatter()

	maxDose := 0.0
	points := make([]opts.ScatterData, 0, len(stations))
	for _, station := range stations {
		maxDose = math.Max(maxDose, station.Dose)
		points = append(points, opts.ScatterData{
			Value:      []float64{station.X, station.Y, station.Dose},
			SymbolSize: 10,
		})
	}
	if maxDose <= 0 {
		maxDose = 1
	}

	prepareScatter(scatter, "Карта дозы (Делоне)", maxDose)

	if raster != nil {
		grid := make([]opts.ScatterData, 0, len(raster.Values))
		for r := 0; r < raster.Rows; r++ {
			for c := 0; c < raster.Cols; c++ {
				v := raster.At(c, r)
				if math.IsNaN(v) {
					continue
				}
				x, y := raster.Center(c, r)
				grid = append(grid, opts.ScatterData{
					Value:      []float64{x, y, v},
					SymbolSize: 4,
				})
			}
		}
		scatter.AddSeries("Интерполяция", grid)
	}

	scatter.AddSeries("Детекторы", points)

	// ребра без повторов: у общего ребра двух треугольников один ключ
	seen := make(map[[2]int32]struct{})
	for _, t := range tri.Triangles() {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if _, ok := seen[[2]int32{a, b}]; ok {
				continue
			}
			seen[[2]int32{a, b}] = struct{}{}
			pa, _ := tri.Node(a)
			pb, _ := tri.Node(b)
			scatter.Overlap(segmentLine("Треугольники", "#9e9e9e", [2]float64{pa.X, pa.Y}, [2]float64{pb.X, pb.Y}))
		}
	}

	if diagram != nil {
		for _, edge := range diagram.Edges {
			scatter.Overlap(segmentLine("Вороной", "lightgreen",
				[2]float64{edge.Va.X, edge.Va.Y}, [2]float64{edge.Vb.X, edge.Vb.Y}))
		}
	}

	return scatter
}

func formInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.FormValue(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func formFloat(r *http.Request, key string, def float64) float64 {
	v, err := strconv.ParseFloat(r.FormValue(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// http обработчик страницы с картой и формой для ввода данных
func diagramHandler(w http.ResponseWriter, r *http.Request) {
	width := 1000
	height := 1000
	numStations := 12
	sigma := 0.25
	var isRandom, withVoronoi bool
	var file string

	if r.Method == http.MethodPost {
		r.ParseForm()
		width = formInt(r, "width", width)
		height = formInt(r, "height", height)
		numStations = formInt(r, "stations", numStations)
		sigma = formFloat(r, "beam", sigma)
		isRandom = r.FormValue("random") == "true"
		withVoronoi = r.FormValue("voronoi") == "true"
		file = r.FormValue("file")
	}

	log := logger.New(logger.Config{Level: *logLevel, Console: *console})
	defer log.ClearLogs()

	var stations []Station
	if file != "" {
		m, err := openMeasurement(*dataDir, file)
		if err != nil {
			log.Error("[app] Файл измерения отклонен", zap.String("file", file), zap.Error(err))
		} else {
			stations = stationsFromMeasurement(m)
			log.Info("[app] Измерение загружено", zap.String("file", file), zap.Int("scans", len(m.Scans)), zap.Int("points", m.Len()))
		}
	}
	if stations == nil {
		if isRandom {
			stations = generateRandStations(numStations, width, height)
		} else {
			stations = generateFixStations(numStations, width, height)
		}
		stations = dedupStations(stations)
		applyBeam(stations, width, height, sigma)
	}

	nodes := make([]float64, 0, 3*len(stations))
	for _, s := range stations {
		nodes = append(nodes, s.X, s.Y, s.Dose)
	}

	tri, err := delaunay.Triangulate(nodes, delaunay.WithLogger(log))
	if err != nil {
		log.Error("[app] Триангуляция не построена", zap.Error(err))
		fmt.Fprintln(w, static.Part1)
		fmt.Fprintln(w, static.Part2)
		fmt.Fprintln(w, log.HTML())
		fmt.Fprintln(w, static.Part3)
		return
	}
	defer tri.Free()

	points := make([][2]float64, len(stations))
	for i, s := range stations {
		points[i] = [2]float64{s.X, s.Y}
	}
	cols := *gridCols
	if cols < 1 {
		cols = 24
	}
	raster, err := render.Sample(r.Context(), tri, render.GridFor(points, cols), render.WithLogger(log))
	if err != nil {
		log.Warn("[app] Интерполяция прервана", zap.Error(err))
		raster = nil
	}

	var diagram *voronoi.Diagram
	if withVoronoi {
		minX, minY, maxX, maxY := 0.0, 0.0, float64(width), float64(height)
		for _, p := range points {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
		bbox := voronoi.NewBoundingBox(minX, maxX, minY, maxY)
		diagram = voronoi.FromTriangulation(tri, bbox, false, log)
	}

	scatter := doseToEcharts(stations, tri, raster, diagram)

	fmt.Fprintln(w, static.Part1)

	err = scatter.Render(w)
	if err != nil {
		log.Error("[app] Ошибка рендеринга диаграммы", zap.Error(err))
	}

	fmt.Fprintln(w, static.Part2)

	// Вставляем логи в HTML
	for _, line := range log.Logs() {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, static.Part3)
}

func limit(next http.Handler, l *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	kingpin.Parse()

	log := logger.New(logger.Config{Level: "info", Console: true})
	defer log.Sync()

	mux := http.NewServeMux()
	mux.HandleFunc("/", diagramHandler)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           limit(mux, rate.NewLimiter(rate.Limit(*rps), *burst)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("[app] Сервер запущен", zap.String("addr", *addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("[app] ListenAndServe", zap.Error(err))
		os.Exit(1)
	}
}
