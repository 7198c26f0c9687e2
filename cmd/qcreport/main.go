package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/daispacy/qcreport/internal/attachment"
	"github.com/daispacy/qcreport/internal/auth"
	"github.com/daispacy/qcreport/internal/config"
	"github.com/daispacy/qcreport/internal/credential"
	"github.com/daispacy/qcreport/internal/submit"
	"github.com/daispacy/qcreport/pkg/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	reportPath := flag.String("report", "", "path to a report JSON file to submit")
	uploadPath := flag.String("upload", "", "path to a media file to upload standalone")
	uploadKind := flag.String("kind", string(types.KindScreenshot), "attachment kind for -upload: screenshot | screen_recording")
	reportID := flag.String("report-id", "", "existing report id for -upload")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("qcreport starting", "endpoint", cfg.Endpoint, "auth", cfg.Auth.Enabled())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store credential.Store
	if cfg.CredentialDir != "" {
		store = credential.NewDiskStore(cfg.CredentialDir)
	} else {
		store = credential.NewMemoryStore()
	}

	var authorizer submit.Authorizer
	if cfg.Auth.Enabled() {
		authorizer = auth.NewResolver(cfg.Auth, store)
	}

	client := submit.New(cfg, authorizer, attachment.NewProcessor(cfg.Attachments))

	switch {
	case *reportPath != "":
		id, err := submitReport(ctx, client, *reportPath)
		if err != nil {
			slog.Error("submission failed", "err", err)
			os.Exit(1)
		}
		fmt.Println(id)

	case *uploadPath != "":
		if *reportID == "" {
			slog.Error("-upload requires -report-id")
			os.Exit(2)
		}
		att := types.Attachment{
			Kind:       types.AttachmentKind(*uploadKind),
			SourcePath: *uploadPath,
			CapturedAt: time.Now(),
		}
		id, err := client.UploadFile(ctx, att, *reportID)
		if err != nil {
			slog.Error("upload failed", "err", err)
			os.Exit(1)
		}
		fmt.Println(id)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// submitReport reads a report from a JSON file and submits it, filling
// in an id and timestamp when the capture layer left them empty.
func submitReport(ctx context.Context, client *submit.Client, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}

	var rpt types.Report
	if err := json.Unmarshal(data, &rpt); err != nil {
		return "", fmt.Errorf("parse report: %w", err)
	}
	if rpt.ID == "" {
		rpt.ID = uuid.NewString()
	}
	if rpt.CreatedAt.IsZero() {
		rpt.CreatedAt = time.Now()
	}

	return client.Submit(ctx, rpt)
}
