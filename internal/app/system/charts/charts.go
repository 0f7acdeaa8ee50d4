// Package charts renders registration aggregates as server-side ECharts HTML.
package charts

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/stats"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// Kind is a chart type.
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

// Spec describes one chart.
type Spec struct {
	Kind     Kind
	Title    string
	Subtitle string
	Series   string // legend entry
	Buckets  []stats.Bucket
}

// Renderer turns Specs into HTML fragments.
type Renderer struct {
	cache      *Cache
	theme      string
	height     string
	assetsHost string
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithCache injects a render cache.
func WithCache(c *Cache) Option {
	return func(r *Renderer) { r.cache = c }
}

// WithTheme sets the chart theme (defaults to Westeros).
func WithTheme(theme string) Option {
	return func(r *Renderer) { r.theme = theme }
}

// WithHeight sets the CSS height of every chart.
func WithHeight(h string) Option {
	return func(r *Renderer) { r.height = h }
}

// WithAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithAssetsHost(host string) Option {
	return func(r *Renderer) { r.assetsHost = host }
}

// NewRenderer builds a Renderer. Without WithCache, rendered HTML is cached
// for five minutes.
func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{
		cache:  NewCache(5 * time.Minute),
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns the chart HTML for s. Identical specs hit the cache; new
// data for the same chart replaces its cached rendering.
func (r *Renderer) Render(s Spec) (template.HTML, error) {
	slot, digest := cacheKey(s)
	html, err := r.cache.GetOrRender(slot, digest, func() (string, error) {
		return r.render(s)
	})
	if err != nil {
		return "", fmt.Errorf("render %s chart %q: %w", s.Kind, s.Title, err)
	}
	return template.HTML(html), nil
}

func (r *Renderer) render(s Spec) (string, error) {
	labels, values := split(s.Buckets)
	switch s.Kind {
	case KindBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(s)...)
		bar.SetXAxis(labels)
		bar.AddSeries(s.Series, toBarData(labels, values))
		return renderChart(bar)
	case KindLine:
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(s)...)
		line.SetXAxis(labels)
		line.AddSeries(s.Series, toLineData(labels, values))
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case KindPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions(s)...)
		pie.AddSeries(s.Series, toPieData(labels, values))
		return renderChart(pie)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", s.Kind)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) globalOptions(s Spec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: s.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func split(buckets []stats.Bucket) ([]string, []int) {
	labels := make([]string, len(buckets))
	values := make([]int, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Key
		values[i] = b.Count
	}
	return labels, values
}

func toBarData(labels []string, values []int) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i := range values {
		data[i] = opts.BarData{Name: labels[i], Value: values[i]}
	}
	return data
}

func toLineData(labels []string, values []int) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i := range values {
		data[i] = opts.LineData{Name: labels[i], Value: values[i]}
	}
	return data
}

func toPieData(labels []string, values []int) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i := range values {
		data[i] = opts.PieData{Name: labels[i], Value: values[i]}
	}
	return data
}

// cacheKey identifies the chart (slot) and its data (digest).
func cacheKey(s Spec) (slot, digest string) {
	b, err := json.Marshal(s.Buckets)
	if err != nil {
		b = nil
	}
	sum := sha1.Sum(b)
	return strings.Join([]string{string(s.Kind), s.Title, s.Subtitle, s.Series}, ":"), hex.EncodeToString(sum[:])
}
