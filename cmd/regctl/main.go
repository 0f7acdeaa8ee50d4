package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/stats"
	"github.com/dalemusser/regdash/internal/app/system/xlsxexport"
	"github.com/dalemusser/regdash/internal/domain/models"
)

type cli struct {
	Export exportCmd `cmd:"" help:"Download every registrant into an xlsx workbook."`
	Stats  statsCmd  `cmd:"" help:"Print registration aggregates."`
}

type backendFlags struct {
	BackendURL string        `required:"" env:"REGDASH_BACKEND_BASE_URL" help:"Base URL of the registration backend."`
	UsersPath  string        `default:"/user" help:"Path of the full registrant list."`
	Timezone   string        `default:"Asia/Tashkent" help:"Time zone for dates and buckets."`
	Timeout    time.Duration `default:"30s" help:"Request timeout."`
}

func (f backendFlags) client() (*registrants.Client, error) {
	return registrants.New(registrants.Config{
		BaseURL:      f.BackendURL,
		UsersPath:    f.UsersPath,
		AllUsersPath: f.UsersPath,
		Logger:       zap.NewNop(),
	})
}

func (f backendFlags) fetch(ctx context.Context, course models.Course) ([]models.Registrant, *time.Location, error) {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("regctl: timezone %q: %w", f.Timezone, err)
	}
	c, err := f.client()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	users, err := c.All(ctx, course)
	if err != nil {
		return nil, nil, fmt.Errorf("regctl: fetch registrants: %w", err)
	}
	return users, loc, nil
}

type exportCmd struct {
	backendFlags
	Course string `default:"all" enum:"all,a,b" help:"Course filter (all, a or b)."`
	Names  string `help:"Course display names, e.g. 'a:Frontend,b:Backend'."`
	Out    string `type:"path" help:"Output file (defaults to <scope>_<date>.xlsx in the current directory)."`

	stdout io.Writer
	now    func() time.Time
}

type statsCmd struct {
	backendFlags
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."`

	stdout io.Writer
	now    func() time.Time
}

// newParser builds the kong parser for c. ctx is bound as context.Context so
// each command's Run receives it.
func newParser(ctx context.Context, c *cli) (*kong.Kong, error) {
	return kong.New(c,
		kong.Name("regctl"),
		kong.Description("Command-line access to registrant exports and statistics."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
}

func main() {
	var c cli
	parser, err := newParser(context.Background(), &c)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run())
}

func (cmd *exportCmd) Run(ctx context.Context) error {
	course := models.ParseCourse(cmd.Course)
	users, loc, err := cmd.fetch(ctx, course)
	if err != nil {
		return err
	}

	names := models.ParseCourseNames(cmd.Names)
	var buf bytes.Buffer
	n, err := xlsxexport.Write(&buf, users, xlsxexport.Options{
		Location:      loc,
		IncludeCourse: course.IsAll(),
		CourseNames:   names,
	})
	if err != nil {
		return fmt.Errorf("regctl: build workbook: %w", err)
	}

	out := cmd.Out
	if out == "" {
		scope := ""
		if !course.IsAll() {
			scope = names.Name(course)
		}
		out = xlsxexport.Filename(scope, nowOr(cmd.now)().In(loc))
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("regctl: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("regctl: write %s: %w", out, err)
	}
	fmt.Fprintf(writerOr(cmd.stdout), "✓ Wrote %d registrants to %s\n", n, out)
	return nil
}

func (cmd *statsCmd) Run(ctx context.Context) error {
	users, loc, err := cmd.fetch(ctx, models.CourseAll)
	if err != nil {
		return err
	}
	summary := stats.Compute(users, loc, nowOr(cmd.now)())
	return writeSummary(writerOr(cmd.stdout), cmd.Format, summary)
}

func writeSummary(w io.Writer, format string, s stats.Summary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("regctl: unsupported format %q", format)
	}
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func nowOr(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
