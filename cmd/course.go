package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

var courseID string

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Show a course's metadata (total days with data)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		course, err := env.Registry.Lookup(courseID)
		if err != nil {
			return eris.Wrapf(err, "lookup course %s", courseID)
		}

		doc, ok, err := env.Docs.GetDocument(ctx, course.MetadataPath())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s: no days ingested yet\n", course.Name)
			return nil
		}

		var meta model.Metadata
		if err := doc.Decode(&meta); err != nil {
			return err
		}
		fmt.Printf("%s: %d days available (last updated %s)\n",
			course.Name, meta.TotalDays, meta.LastUpdated.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	courseCmd.Flags().StringVar(&courseID, "course", "", "course ID (required)")
	_ = courseCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(courseCmd)
}
