package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sbs-go/internal/app"
	"sbs-go/internal/sbs"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
}

var docImportCmd = &cobra.Command{
	Use:   "import FILE|DIR",
	Short: "Import files and split them into segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		recursive, _ := cmd.Flags().GetBool("recursive")

		return withApp(cmd, "ImportDocument", func(a *app.SBSApp) error {
			docs, err := a.ImportPath(args[0], name, from, to, recursive)
			for _, doc := range docs {
				fmt.Printf("Imported %s as %s\n", doc.OriginalFileName, doc.ID)
			}
			if len(docs) > 0 {
				fmt.Printf("Processing %d document(s)...\n", len(docs))
			}
			return err
		})
	},
}

var docCreateCmd = &cobra.Command{
	Use:   "create NAME SEGMENT...",
	Short: "Create a document from source segments",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		req := sbs.CreateRequest{Name: args[0], SourceLanguage: from, TargetLanguage: to}
		for _, src := range args[1:] {
			req.Segments = append(req.Segments, sbs.SegmentInput{SourceText: src})
		}

		return withApp(cmd, "CreateDocument", func(a *app.SBSApp) error {
			doc, err := a.Service().CreateDocument(context.Background(), a.UserID(), req)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s with %d segment(s)\n", doc.ID, len(doc.Segments))
			return nil
		})
	},
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListDocuments", func(a *app.SBSApp) error {
			docs, err := a.Service().ListDocuments(context.Background(), a.UserID())
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("No documents.")
				return nil
			}
			width := termWidth()
			for _, d := range docs {
				line := fmt.Sprintf("%s  %-13s  %s>%s  %4d  %s",
					d.ID, d.ProcessingStatus, d.SourceLanguage, d.TargetLanguage, len(d.Segments), d.Name)
				fmt.Println(truncate(line, width))
			}
			return nil
		})
	},
}

var docShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "GetDocument", func(a *app.SBSApp) error {
			doc, err := a.Service().GetDocument(context.Background(), a.UserID(), args[0])
			if err != nil {
				return err
			}
			printDocument(doc)

			jobs, err := a.Jobs(doc.ID)
			if err != nil {
				return err
			}
			for _, j := range jobs {
				fmt.Printf("Job %s  %-9s  %s  %s\n", j.ID, j.Status, j.UpdatedAt.Format("2006-01-02 15:04:05"), j.Error)
			}
			return nil
		})
	},
}

var docSegmentsCmd = &cobra.Command{
	Use:   "segments ID",
	Short: "Show the segments of a document side by side",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListSegments", func(a *app.SBSApp) error {
			segs, err := a.Service().ListSegments(context.Background(), a.UserID(), args[0])
			if err != nil {
				return err
			}
			width := termWidth()
			for _, s := range segs {
				printSegment(s, width)
			}
			return nil
		})
	},
}

var docUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename a document or change its languages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req sbs.UpdateDocumentRequest
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("from") {
			v, _ := cmd.Flags().GetString("from")
			req.SourceLanguage = &v
		}
		if cmd.Flags().Changed("to") {
			v, _ := cmd.Flags().GetString("to")
			req.TargetLanguage = &v
		}

		return withApp(cmd, "UpdateDocument", func(a *app.SBSApp) error {
			doc, err := a.Service().UpdateDocument(context.Background(), a.UserID(), args[0], req)
			if err != nil {
				return err
			}
			printDocument(doc)
			return nil
		})
	},
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "DeleteDocument", func(a *app.SBSApp) error {
			if err := a.Service().DeleteDocument(context.Background(), a.UserID(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var docReprocessCmd = &cobra.Command{
	Use:   "reprocess ID",
	Short: "Extract the segments of an imported document again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Reprocess", func(a *app.SBSApp) error {
			doc, err := a.Service().Reprocess(context.Background(), a.UserID(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Reprocessing %s...\n", doc.ID)
			return nil
		})
	},
}

var docOriginalCmd = &cobra.Command{
	Use:   "original ID",
	Short: "Write the original imported file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		return withApp(cmd, "OriginalFile", func(a *app.SBSApp) error {
			if out == "" || out == "-" {
				return a.WriteOriginal(args[0], "", os.Stdout)
			}
			if err := a.WriteOriginal(args[0], out, nil); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
			return nil
		})
	},
}

func init() {
	docCmd.AddCommand(docImportCmd)
	docImportCmd.Flags().StringP("name", "n", "", "Document name (default: file name without extension)")
	docImportCmd.Flags().String("from", "", "Source language")
	docImportCmd.Flags().String("to", "", "Target language")
	docImportCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	docImportCmd.MarkFlagRequired("from")
	docImportCmd.MarkFlagRequired("to")

	docCmd.AddCommand(docCreateCmd)
	docCreateCmd.Flags().String("from", "", "Source language")
	docCreateCmd.Flags().String("to", "", "Target language")
	docCreateCmd.MarkFlagRequired("from")
	docCreateCmd.MarkFlagRequired("to")

	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docSegmentsCmd)

	docCmd.AddCommand(docUpdateCmd)
	docUpdateCmd.Flags().StringP("name", "n", "", "New name")
	docUpdateCmd.Flags().String("from", "", "New source language")
	docUpdateCmd.Flags().String("to", "", "New target language")

	docCmd.AddCommand(docDeleteCmd)
	docCmd.AddCommand(docReprocessCmd)
	docCmd.AddCommand(docOriginalCmd)
	docOriginalCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}
