// Command fileshare is a terminal client for the file-sharing backend:
// it lists, uploads, downloads, previews, shares and deletes files,
// prompting for a download code whenever a private file requires one.
//
// Configuration comes from the environment (see client.Config):
// FILESHARE_BASE_URL, FILESHARE_TIMEOUT and FILESHARE_TOKEN.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/fileshare/client"
	"github.com/dmitrymomot/fileshare/core/challenge"
	"github.com/dmitrymomot/fileshare/core/config"
	"github.com/dmitrymomot/fileshare/core/logger"
	"github.com/dmitrymomot/fileshare/core/preview"
	"github.com/dmitrymomot/fileshare/core/retrieval"
	"github.com/dmitrymomot/fileshare/core/sharelink"
)

const usage = `Usage: fileshare [flags] <command> [args]

Commands:
  list                     list visible files
  info <id>                show file metadata
  download <id>            download a file into the current directory
  preview <id>             preview a file
  upload <path>            upload a file
  delete <id>              delete an owned file
  share <id>               print a share link (and code, for owned private files)
  whoami                   show the authenticated user

Flags:
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fileshare:", err)
		os.Exit(1)
	}
}

func run() error {
	verbose := flag.Bool("v", false, "verbose logging")
	private := flag.Bool("private", false, "upload: gate the file behind a download code")
	code := flag.String("code", "", "download code to use (or set at upload)")
	origin := flag.String("origin", "", "share: origin URL for the link (default: base URL without /api)")
	qrPath := flag.String("qr", "", "share: write a QR code PNG to this path")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	var cfg client.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := newLogger(*verbose)
	c, err := client.NewFromConfig(cfg, client.WithLogger(log))
	if err != nil {
		return err
	}
	o := retrieval.New(c, retrieval.WithLogger(log))

	ctx := context.Background()
	app := &app{client: c, orchestrator: o, cfg: cfg, log: log}

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "list":
		return app.list(ctx)
	case "info":
		return app.info(ctx, args)
	case "download":
		return app.download(ctx, args, *code)
	case "preview":
		return app.preview(ctx, args, *code)
	case "upload":
		return app.upload(ctx, args, *private, *code)
	case "delete":
		return app.delete(ctx, args)
	case "share":
		return app.share(ctx, args, *origin, *qrPath)
	case "whoami":
		return app.whoami(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newLogger(verbose bool) *slog.Logger {
	opts := []logger.Option{logger.WithProduction("fileshare"), logger.WithOutput(os.Stderr)}
	if verbose {
		opts = []logger.Option{logger.WithDevelopment("fileshare"), logger.WithOutput(os.Stderr)}
	}
	return logger.New(opts...)
}

type app struct {
	client       *client.Client
	orchestrator *retrieval.Orchestrator
	cfg          client.Config
	log          *slog.Logger
}

func (a *app) list(ctx context.Context) error {
	records, err := a.client.ListFiles(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		marker := ""
		if rec.IsPrivate() {
			marker = " [private]"
		}
		fmt.Printf("%s\t%s%s\t%s\t%d downloads\n", rec.ID, rec.Filename, marker, rec.Owner, rec.Downloads)
	}
	return nil
}

func (a *app) info(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("info: expected a file id")
	}
	rec, err := a.client.FileInfo(ctx, args[0], "")
	if err != nil {
		return err
	}
	fmt.Printf("ID:          %s\n", rec.ID)
	fmt.Printf("Filename:    %s\n", rec.Filename)
	fmt.Printf("Uploader:    %s\n", rec.Owner)
	fmt.Printf("Visibility:  %s\n", rec.Visibility)
	fmt.Printf("Type:        %s\n", rec.ContentType)
	fmt.Printf("Size:        %d\n", rec.Size)
	fmt.Printf("Downloads:   %d\n", rec.Downloads)
	fmt.Printf("Previewable: %t\n", rec.CanPreview)
	return nil
}

func (a *app) download(ctx context.Context, args []string, code string) error {
	if len(args) != 1 {
		return errors.New("download: expected a file id")
	}
	fileID := args[0]

	out, err := a.orchestrator.ResolveDownload(ctx, fileID, a.ownsFile(ctx, fileID), code)
	if err != nil {
		return err
	}
	for out.Pending {
		if out, err = a.answerDownloadChallenge(ctx, out.Session); err != nil {
			return err
		}
	}

	if err := os.WriteFile(out.Filename, out.Data, 0o644); err != nil {
		return fmt.Errorf("save download: %w", err)
	}
	fmt.Printf("Saved %s (%d bytes)\n", out.Filename, len(out.Data))
	return nil
}

func (a *app) preview(ctx context.Context, args []string, code string) error {
	if len(args) != 1 {
		return errors.New("preview: expected a file id")
	}
	fileID := args[0]

	out, err := a.orchestrator.ResolvePreview(ctx, fileID, a.ownsFile(ctx, fileID), code)
	if err != nil {
		return err
	}
	for out.Pending {
		if out, err = a.answerPreviewChallenge(ctx, out.Session); err != nil {
			return err
		}
	}

	plan := out.Plan
	defer plan.Discard()

	switch plan.Strategy {
	case preview.InlineText, preview.InlineHTML:
		fmt.Printf("--- %s ---\n%s\n", plan.DisplayTitle, plan.Text)
	case preview.Image, preview.EmbeddedDocument:
		data, err := plan.Content.Bytes()
		if err != nil {
			return err
		}
		name := "preview-" + filepath.Base(plan.ResolvedFilename)
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("save preview: %w", err)
		}
		fmt.Printf("Preview of %s saved to %s\n", plan.DisplayTitle, name)
	default:
		fmt.Printf("%s: this file type cannot be previewed\n", plan.DisplayTitle)
	}
	return nil
}

func (a *app) upload(ctx context.Context, args []string, private bool, code string) error {
	if len(args) != 1 {
		return errors.New("upload: expected a file path")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if private && code == "" {
		if code, err = sharelink.GenerateCode(); err != nil {
			return err
		}
	}

	result, err := a.client.Upload(ctx, client.UploadRequest{
		Filename:     filepath.Base(args[0]),
		Content:      f,
		Private:      private,
		DownloadCode: code,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	if result.DownloadCode != "" {
		fmt.Printf("Download code: %s\n", result.DownloadCode)
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("delete: expected a file id")
	}
	if err := a.client.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *app) share(ctx context.Context, args []string, origin, qrPath string) error {
	if len(args) != 1 {
		return errors.New("share: expected a file id")
	}

	rec, err := a.client.FileInfo(ctx, args[0], "")
	if err != nil {
		return err
	}
	if origin == "" {
		origin = strings.TrimSuffix(a.cfg.BaseURL, "/api")
	}

	bundle := sharelink.Build(rec, origin, a.ownsFile(ctx, rec.ID))
	if qrPath != "" {
		if bundle, err = sharelink.BuildWithQR(rec, origin, a.ownsFile(ctx, rec.ID), 256); err != nil {
			return err
		}
		if err := os.WriteFile(qrPath, bundle.QR, 0o644); err != nil {
			return fmt.Errorf("save qr code: %w", err)
		}
	}

	fmt.Printf("Link: %s\n", bundle.Link)
	if bundle.Code != "" {
		fmt.Printf("Code: %s (share it out of band)\n", bundle.Code)
	}
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (id %d)\n", user.Username, user.ID)
	return nil
}

// ownsFile reports whether the authenticated user uploaded the file.
// Anonymous callers and lookup failures count as not owning it.
func (a *app) ownsFile(ctx context.Context, fileID string) bool {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return false
	}
	rec, err := a.client.FileInfo(ctx, fileID, "")
	if err != nil {
		return false
	}
	return rec.Owner == user.Username
}

// answerDownloadChallenge prompts for a code and resumes the download.
func (a *app) answerDownloadChallenge(ctx context.Context, sess challenge.Session) (retrieval.DownloadOutcome, error) {
	resumption, err := a.answerChallenge(ctx, sess)
	if err != nil {
		return retrieval.DownloadOutcome{}, err
	}
	return *resumption.Download, nil
}

// answerPreviewChallenge prompts for a code and resumes the preview.
func (a *app) answerPreviewChallenge(ctx context.Context, sess challenge.Session) (retrieval.PreviewOutcome, error) {
	resumption, err := a.answerChallenge(ctx, sess)
	if err != nil {
		return retrieval.PreviewOutcome{}, err
	}
	return *resumption.Preview, nil
}

func (a *app) answerChallenge(ctx context.Context, sess challenge.Session) (retrieval.Resumption, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		if sess.WrongCode {
			fmt.Fprintln(os.Stderr, "Wrong download code.")
		} else {
			fmt.Fprintln(os.Stderr, "This file requires a download code.")
		}
		fmt.Fprint(os.Stderr, "Code (empty to cancel): ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return retrieval.Resumption{}, err
		}
		code := strings.TrimSpace(line)
		if code == "" {
			if err := a.orchestrator.CancelChallenge(); err != nil {
				return retrieval.Resumption{}, err
			}
			return retrieval.Resumption{}, errors.New("cancelled")
		}

		resumption, err := a.orchestrator.SubmitCode(ctx, code)
		if errors.Is(err, challenge.ErrInvalidCode) {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err != nil {
			return retrieval.Resumption{}, err
		}
		return resumption, nil
	}
}
