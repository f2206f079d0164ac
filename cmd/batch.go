package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kimsuncheol/voca-ingest/internal/fetch"
	"github.com/Kimsuncheol/voca-ingest/internal/ingest"
)

var (
	batchCourse  string
	batchDir     string
	batchCharset string
	batchYes     bool
)

// dayFilePattern matches per-day source files like "Day3.csv".
var dayFilePattern = regexp.MustCompile(`^Day(\d+)\.csv$`)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Ingest every DayN.csv file in a directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, ingest.WithProgress(printProgress))
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := os.ReadDir(batchDir)
		if err != nil {
			return eris.Wrapf(err, "read dir %s", batchDir)
		}

		var slots []ingest.Slot
		for _, entry := range entries {
			m := dayFilePattern.FindStringSubmatch(entry.Name())
			if m == nil {
				continue
			}
			day, _ := strconv.Atoi(m[1])

			data, err := os.ReadFile(filepath.Join(batchDir, entry.Name()))
			if err != nil {
				return eris.Wrapf(err, "read %s", entry.Name())
			}
			if data, err = fetch.DecodeCharset(data, batchCharset); err != nil {
				return err
			}
			src, err := ingest.SourceFromDelimited(data)
			if err != nil {
				zap.L().Warn("batch: skipping unparseable file",
					zap.String("file", entry.Name()),
					zap.Error(err),
				)
				continue
			}
			slots = append(slots, ingest.Slot{Day: day, Source: src})
		}
		if len(slots) == 0 {
			return eris.Errorf("no DayN.csv files found in %s", batchDir)
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i].Day < slots[j].Day })

		confirm := promptConfirm
		if batchYes {
			confirm = autoConfirm
		}

		results, total := env.Pipeline.Batch(ctx, batchCourse, slots, confirm)
		for _, res := range results {
			if res.Err != nil {
				fmt.Printf("Day %d: failed: %v\n", res.Day, res.Err)
				continue
			}
			fmt.Printf("Day %d: uploaded %d, failed %d\n", res.Day, res.Outcome.Success, res.Outcome.Failed)
		}
		fmt.Printf("Successfully uploaded: %d, Failed: %d\n", total.Success, total.Failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCourse, "course", "", "course ID (required)")
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of DayN.csv files (required)")
	batchCmd.Flags().StringVar(&batchCharset, "charset", "", "source character set for CSV files, e.g. euc-kr (default: utf-8)")
	batchCmd.Flags().BoolVar(&batchYes, "yes", false, "overwrite existing slots without prompting")
	_ = batchCmd.MarkFlagRequired("course")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}
