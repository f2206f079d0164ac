package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kimsuncheol/voca-ingest/internal/fetch"
	"github.com/Kimsuncheol/voca-ingest/internal/ingest"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

var (
	ingestCourse  string
	ingestDay     int
	ingestFile    string
	ingestURL     string
	ingestSheet   string
	ingestCharset string
	ingestYes     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one day's vocabulary sheet into a course slot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if (ingestFile == "") == (ingestURL == "") {
			return eris.New("exactly one of --file or --url is required")
		}

		env, err := initEnv(ctx, ingest.WithProgress(printProgress))
		if err != nil {
			return err
		}
		defer env.Close()

		src, err := loadSource(ctx, ingestFile, ingestURL, ingestSheet, ingestCharset)
		if err != nil {
			return err
		}

		confirm := promptConfirm
		if ingestYes {
			confirm = autoConfirm
		}

		outcome, err := env.Pipeline.Ingest(ctx, ingestCourse, ingestDay, src, confirm)
		if err != nil {
			return eris.Wrapf(err, "ingest %s Day%d", ingestCourse, ingestDay)
		}

		fmt.Printf("Successfully uploaded: %d, Failed: %d (enriched %d, enrichment misses %d)\n",
			outcome.Success, outcome.Failed, outcome.Enriched, outcome.EnrichFailed)
		return nil
	},
}

// loadSource reads and parses the slot's source sheet from a local file or a
// remote URL. Delimited sources are transcoded from charset to UTF-8; XLSX
// workbooks carry their own encoding.
func loadSource(ctx context.Context, file, rawURL, sheet, charset string) (ingest.Source, error) {
	if file != "" {
		if strings.HasSuffix(strings.ToLower(file), ".xlsx") {
			grid, err := fetch.ReadXLSX(file, fetch.XLSXOptions{SheetName: sheet})
			if err != nil {
				return ingest.Source{}, err
			}
			return ingest.SourceFromGrid(grid, nil)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return ingest.Source{}, eris.Wrapf(err, "read %s", file)
		}
		if data, err = fetch.DecodeCharset(data, charset); err != nil {
			return ingest.Source{}, err
		}
		return ingest.SourceFromDelimited(data)
	}

	var fetcher fetch.Fetcher
	if strings.HasPrefix(rawURL, "ftp://") {
		fetcher = fetch.NewFTPFetcher(fetch.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})
	} else {
		fetcher = fetch.NewHTTPFetcher(fetch.HTTPOptions{
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RateLimiters: map[string]*rate.Limiter{
				"docs.google.com": rate.NewLimiter(1, 2),
			},
		})
	}

	body, err := fetcher.Download(ctx, rawURL)
	if err != nil {
		return ingest.Source{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return ingest.Source{}, eris.Wrapf(err, "read %s", rawURL)
	}

	if strings.HasSuffix(strings.ToLower(rawURL), ".xlsx") {
		grid, err := fetch.ParseXLSX(data, fetch.XLSXOptions{SheetName: sheet})
		if err != nil {
			return ingest.Source{}, err
		}
		return ingest.SourceFromGrid(grid, nil)
	}
	if data, err = fetch.DecodeCharset(data, charset); err != nil {
		return ingest.Source{}, err
	}
	return ingest.SourceFromDelimited(data)
}

// promptConfirm asks on the terminal whether an existing slot may be
// overwritten.
func promptConfirm(_ context.Context, _ ingest.Conflict, description string) (bool, error) {
	fmt.Printf("%s.\nOverwrite? [y/N]: ", description)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, eris.Wrap(err, "read confirmation")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func autoConfirm(context.Context, ingest.Conflict, string) (bool, error) {
	return true, nil
}

func printProgress(state model.RunState, detail string) {
	if detail != "" {
		zap.L().Info("progress", zap.String("state", string(state)), zap.String("detail", detail))
		return
	}
	zap.L().Info("progress", zap.String("state", string(state)))
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCourse, "course", "", "course ID (required)")
	ingestCmd.Flags().IntVar(&ingestDay, "day", 0, "day number (required)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to a CSV or XLSX file")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "http(s) or ftp URL of a remote sheet")
	ingestCmd.Flags().StringVar(&ingestSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	ingestCmd.Flags().StringVar(&ingestCharset, "charset", "", "source character set for CSV files, e.g. euc-kr (default: utf-8)")
	ingestCmd.Flags().BoolVar(&ingestYes, "yes", false, "overwrite existing slots without prompting")
	_ = ingestCmd.MarkFlagRequired("course")
	_ = ingestCmd.MarkFlagRequired("day")
	rootCmd.AddCommand(ingestCmd)
}
