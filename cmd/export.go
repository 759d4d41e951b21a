package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/content"
	"github.com/aniquiz/aniquiz/internal/export"
	"github.com/aniquiz/aniquiz/internal/question"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export a chapter's questions and answers to a workbook",
	Example: `  aniquiz export --subject Science --chapter Light -o light.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		chapter, _ := cmd.Flags().GetString("chapter")
		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" {
			outPath = content.FolderKey(subject) + "_" + content.FolderKey(chapter) + ".xlsx"
		}

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		ex := export.New(rt.repository(cmd), question.NewNormalizer(nil), rt.log)
		n, err := ex.Write(cmd.Context(), f, content.FolderKey(subject), content.FolderKey(chapter))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outPath)
			return err
		}
		fmt.Printf("Wrote %d questions to %s\n", n, outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("subject", "", "Subject name")
	exportCmd.Flags().String("chapter", "", "Chapter name")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default <Subject>_<Chapter>.xlsx)")
	_ = exportCmd.MarkFlagRequired("subject")
	_ = exportCmd.MarkFlagRequired("chapter")
}
