package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/opencv"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

const usage = `usage: kiosk [flags] <command>

commands:
  register -name "Full Name"   capture a face and register it
  mark                         capture a face and mark attendance
  report [-date YYYY-MM-DD]    print attendance records and the summary

flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("kiosk", flag.ContinueOnError)
	window := fs.Bool("window", true, "show the camera feed in a desktop window")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = stores.Close() }()

	command, rest := fs.Arg(0), fs.Args()[1:]

	if command == "report" {
		svc := service.NewAttendanceService(stores.Users, stores.Attendance, nil, logger)
		return report(ctx, svc, rest)
	}

	pipeline, err := face.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to load face pipeline: %w", err)
	}
	defer func() { _ = pipeline.Close() }()

	display := capture.MultiDisplay{capture.NewLogDisplay(logger)}
	if *window {
		w := opencv.NewWindow("presenca")
		defer func() { _ = w.Close() }()
		display = append(display, w)
	}

	orchestrator := capture.NewOrchestrator(
		pipeline.Camera,
		pipeline.Detector,
		provider.NewExtractor(pipeline.Library),
		display,
		logger,
		face.CaptureOptions(cfg),
	)

	svc := service.NewAttendanceService(stores.Users, stores.Attendance, orchestrator, logger).
		WithTolerance(cfg.MatchTolerance).
		WithAttempts(stores.Attempts)

	switch command {
	case "register":
		return register(ctx, svc, rest)
	case "mark":
		return mark(ctx, svc)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func register(ctx context.Context, svc *service.AttendanceService, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name of the person")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Look at the camera and move your face in a circle.")
	user, err := svc.Register(ctx, *name)
	if err != nil {
		return describe(err)
	}

	fmt.Printf("Registered %s (%s)\n", user.Name, user.Key)
	return nil
}

func mark(ctx context.Context, svc *service.AttendanceService) error {
	fmt.Println("Look at the camera and move your face in a circle.")
	record, err := svc.MarkAttendance(ctx)
	if err != nil {
		return describe(err)
	}

	fmt.Printf("Attendance marked for %s on %s at %s\n", record.Name, record.Date(), record.Time())
	return nil
}

func report(ctx context.Context, svc *service.AttendanceService, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	date := fs.String("date", "", "only records of this date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := svc.Records(ctx, *date)
	if err != nil {
		return describe(err)
	}
	summary, err := svc.Analytics(ctx)
	if err != nil {
		return describe(err)
	}

	return writeReport(os.Stdout, records, summary)
}

// describe keeps only the user facing message of application errors.
func describe(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return errors.New(appErr.Message)
	}
	return err
}
