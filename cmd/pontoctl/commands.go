package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"ponto/internal/domain/core"
	"ponto/internal/domain/reports"
	"ponto/internal/domain/timeclock"
	"ponto/internal/platform/config"
	"ponto/internal/platform/journal"
)

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "pontoctl",
		Usage:     "offline punch journal and report tools",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "timezone", Value: "America/Sao_Paulo", Usage: "zone punches are grouped in"},
		},
		Commands: []*cli.Command{
			punchCommand,
			reportCommand,
			checkCommand,
		},
	}
}

var errNoSource = errors.New("one of --file or --db is required")

var (
	fileFlag = &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON array of punch records"}
	dbFlag   = &cli.StringFlag{Name: "db", Usage: "offline punch journal"}
	nowFlag  = &cli.StringFlag{Name: "now", Usage: "instant to evaluate at, RFC3339 or YYYY-MM-DD HH:MM"}
)

var punchCommand = &cli.Command{
	Name:  "punch",
	Usage: "record a punch in the offline journal",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "db", Required: true, Usage: "offline punch journal"},
		&cli.StringFlag{Name: "employee", Required: true},
		&cli.StringFlag{Name: "kind", Required: true, Usage: "entry, break or exit"},
		nowFlag,
	},
	Action: func(c *cli.Context) error {
		loc := location(c)
		now, err := evaluationTime(c, loc)
		if err != nil {
			return err
		}
		kind, ok := timeclock.ParseKind(c.String("kind"))
		if !ok {
			return &timeclock.UnknownKindError{Value: c.String("kind")}
		}

		j, err := journal.Open(c.String("db"))
		if err != nil {
			return err
		}
		defer j.Close()

		employeeID := c.String("employee")
		records, err := j.Records(employeeID)
		if err != nil {
			return err
		}
		punches, _ := timeclock.Ingest(records, loc, now)
		today := dayUntil(punches, now)
		if err := timeclock.Check(timeclock.StateOf(today), kind); err != nil {
			return err
		}

		punch, err := j.Append(timeclock.Punch{EmployeeID: employeeID, Kind: kind, At: now})
		if err != nil {
			return err
		}
		today = append(today, punch)
		fmt.Fprintf(c.App.Writer, "recorded %s at %s\n", kind, punch.At.In(loc).Format(timeclock.TimeLayout))
		fmt.Fprintf(c.App.Writer, "worked: %s\n", timeclock.FormatDuration(timeclock.WorkedDurationAt(today, now)))
		return nil
	},
}

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "build a period report from a punch export or the journal",
	Flags: []cli.Flag{
		fileFlag,
		dbFlag,
		&cli.StringFlag{Name: "employee", Required: true, Usage: "employee id to report on"},
		&cli.StringFlag{Name: "name", Usage: "employee name printed on the report"},
		&cli.StringFlag{Name: "from", Required: true, Usage: "first date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "to", Required: true, Usage: "last date, YYYY-MM-DD"},
		&cli.IntFlag{Name: "target", Value: 480, Usage: "target shift in minutes"},
		&cli.StringFlag{Name: "format", Value: string(reports.FormatTable), Usage: "table, csv, pdf or xlsx"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
	},
	Action: func(c *cli.Context) error {
		format, err := reports.ParseFormat(c.String("format"))
		if err != nil {
			return err
		}
		loc := location(c)
		employeeID := c.String("employee")
		records, err := loadRecords(c, employeeID)
		if err != nil {
			return err
		}

		punches, skipped := timeclock.Ingest(records, loc, time.Now().In(loc))
		for _, skip := range skipped {
			slog.Warn("punch record skipped", "punchId", skip.Record.ID, "err", skip.Err)
		}
		if len(skipped) > 0 {
			fmt.Fprintf(c.App.ErrWriter, "skipped: %d unreadable record(s)\n", len(skipped))
		}

		name := c.String("name")
		if name == "" {
			name = employeeID
		}
		emp := core.Employee{ID: employeeID, Name: name, TargetShiftMinutes: c.Int("target")}
		report, err := reports.NewReport(emp, c.String("from"), c.String("to"), punches, len(skipped))
		if err != nil {
			return err
		}

		w := c.App.Writer
		if path := c.String("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return reports.Render(w, format, report)
	},
}

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "tell whether a punch would be accepted and how much was worked so far",
	Flags: []cli.Flag{
		fileFlag,
		dbFlag,
		&cli.StringFlag{Name: "employee", Required: true},
		&cli.StringFlag{Name: "kind", Required: true, Usage: "entry, break or exit"},
		nowFlag,
	},
	Action: func(c *cli.Context) error {
		loc := location(c)
		now, err := evaluationTime(c, loc)
		if err != nil {
			return err
		}
		kind, ok := timeclock.ParseKind(c.String("kind"))
		if !ok {
			return &timeclock.UnknownKindError{Value: c.String("kind")}
		}

		records, err := loadRecords(c, c.String("employee"))
		if err != nil {
			return err
		}
		punches, _ := timeclock.Ingest(records, loc, now)
		today := dayUntil(punches, now)

		state := timeclock.StateOf(today)
		fmt.Fprintf(c.App.Writer, "state: %s\n", state)
		if latest := timeclock.MostRecentFirst(today); len(latest) > 0 {
			last := latest[0]
			fmt.Fprintf(c.App.Writer, "last: %s %s (%s)\n", last.Kind, last.Clock(), humanize.RelTime(last.At, now, "ago", "from now"))
		}
		fmt.Fprintf(c.App.Writer, "worked: %s\n", timeclock.FormatDuration(timeclock.WorkedDurationAt(today, now)))
		if err := timeclock.Check(state, kind); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: allowed\n", kind)
		return nil
	},
}

func location(c *cli.Context) *time.Location {
	return config.Config{Timezone: c.String("timezone")}.Location()
}

func evaluationTime(c *cli.Context, loc *time.Location) (time.Time, error) {
	now := time.Now().In(loc)
	raw := c.String("now")
	if raw == "" {
		return now, nil
	}
	parsed, err := timeclock.ParseTimestamp(raw, loc, now)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.In(loc), nil
}

// dayUntil keeps the punches on now's date that are not after now.
func dayUntil(punches []timeclock.Punch, now time.Time) []timeclock.Punch {
	date := now.Format(timeclock.DateLayout)
	out := make([]timeclock.Punch, 0, len(punches))
	for _, p := range punches {
		if p.Date() == date && !p.At.After(now) {
			out = append(out, p)
		}
	}
	return out
}

func loadRecords(c *cli.Context, employeeID string) ([]timeclock.Record, error) {
	switch {
	case c.String("db") != "":
		j, err := journal.Open(c.String("db"))
		if err != nil {
			return nil, err
		}
		defer j.Close()
		return j.Records(employeeID)
	case c.String("file") != "":
		records, err := readRecords(c.String("file"))
		if err != nil {
			return nil, err
		}
		return forEmployee(records, employeeID), nil
	default:
		return nil, errNoSource
	}
}

func readRecords(path string) ([]timeclock.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []timeclock.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func forEmployee(records []timeclock.Record, employeeID string) []timeclock.Record {
	out := make([]timeclock.Record, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.EmployeeID) == employeeID {
			out = append(out, rec)
		}
	}
	return out
}
