package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sbs-go/internal/app"
	"sbs-go/internal/sbs"
	"sbs-go/internal/tm"
)

var tmCmd = &cobra.Command{
	Use:   "tm",
	Short: "Manage the translation memory",
}

// optionalFloat returns the flag value, or nil when it was not given.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

var tmAddCmd = &cobra.Command{
	Use:   "add SOURCE TARGET",
	Short: "Add a translation pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		req := sbs.EntryRequest{
			SourceLanguage: from,
			TargetLanguage: to,
			SourceText:     args[0],
			TargetText:     args[1],
			Confidence:     optionalFloat(cmd, "confidence"),
			Context:        optionalString(cmd, "context"),
			Tags:           tags,
		}

		return withApp(cmd, "CreateEntry", func(a *app.SBSApp) error {
			e, err := a.Service().CreateEntry(context.Background(), a.UserID(), req)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s\n", e.ID)
			return nil
		})
	},
}

var tmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List translation memory entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListEntries", func(a *app.SBSApp) error {
			entries, err := a.Service().ListEntries(context.Background(), a.UserID())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Translation memory is empty.")
				return nil
			}
			width := termWidth()
			for _, e := range entries {
				printEntry(e, width)
			}
			return nil
		})
	},
}

var tmShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "GetEntry", func(a *app.SBSApp) error {
			e, err := a.Service().GetEntry(context.Background(), a.UserID(), args[0])
			if err != nil {
				return err
			}
			printEntry(e, termWidth())
			return nil
		})
	},
}

var tmSearchCmd = &cobra.Command{
	Use:   "search TEXT",
	Short: "Find entries whose source contains TEXT or is contained in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		q := tm.Query{
			SourceLanguage: from,
			TargetLanguage: to,
			Text:           args[0],
			MinConfidence:  optionalFloat(cmd, "min-confidence"),
		}

		return withApp(cmd, "Search", func(a *app.SBSApp) error {
			entries, err := a.Service().Search(context.Background(), a.UserID(), q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			width := termWidth()
			for _, e := range entries {
				printEntry(e, width)
			}
			return nil
		})
	},
}

var tmUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := sbs.EntryUpdate{
			SourceText: optionalString(cmd, "source"),
			TargetText: optionalString(cmd, "target"),
			Confidence: optionalFloat(cmd, "confidence"),
			Context:    optionalString(cmd, "context"),
		}
		if cmd.Flags().Changed("verified") {
			v, _ := cmd.Flags().GetBool("verified")
			req.IsVerified = &v
		}
		if cmd.Flags().Changed("tag") {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			req.Tags = append([]string{}, tags...)
		}

		return withApp(cmd, "UpdateEntry", func(a *app.SBSApp) error {
			e, err := a.Service().UpdateEntry(context.Background(), a.UserID(), args[0], req)
			if err != nil {
				return err
			}
			printEntry(e, termWidth())
			return nil
		})
	},
}

var tmDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "DeleteEntry", func(a *app.SBSApp) error {
			if err := a.Service().DeleteEntry(context.Background(), a.UserID(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var tmImportCmd = &cobra.Command{
	Use:   "import FILE.tmx",
	Short: "Import the translation units of a TMX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		return withApp(cmd, "ImportTMX", func(a *app.SBSApp) error {
			n, err := a.ImportTMXFile(args[0], from, to, optionalFloat(cmd, "confidence"))
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d entr(ies)\n", n)
			return nil
		})
	},
}

var tmPromoteCmd = &cobra.Command{
	Use:   "promote DOC SEG",
	Short: "Save a translated segment to the memory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "PromoteSegment", func(a *app.SBSApp) error {
			e, err := a.Service().PromoteSegment(context.Background(), a.UserID(), args[0], args[1], optionalFloat(cmd, "confidence"))
			if err != nil {
				return err
			}
			fmt.Printf("Added %s\n", e.ID)
			return nil
		})
	},
}

var tmSuggestCmd = &cobra.Command{
	Use:   "suggest DOC SEG",
	Short: "Suggest a translation for a segment from the memory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		apply, _ := cmd.Flags().GetBool("apply")

		return withApp(cmd, "Suggest", func(a *app.SBSApp) error {
			ctx := context.Background()
			e, err := a.Service().Suggest(ctx, a.UserID(), args[0], args[1])
			if err != nil {
				return err
			}
			if e == nil {
				fmt.Println("No suggestion.")
				return nil
			}
			printEntry(e, termWidth())
			if !apply {
				return nil
			}
			target := e.TargetText
			if _, err := a.Service().UpdateSegmentTarget(ctx, a.UserID(), args[0], args[1], &target); err != nil {
				return err
			}
			fmt.Println("Applied.")
			return nil
		})
	},
}

func init() {
	tmCmd.AddCommand(tmAddCmd)
	tmAddCmd.Flags().String("from", "", "Source language")
	tmAddCmd.Flags().String("to", "", "Target language")
	tmAddCmd.Flags().Float64("confidence", sbs.DefaultEntryConfidence, "Confidence in [0, 1]")
	tmAddCmd.Flags().String("context", "", "Where the pair is used")
	tmAddCmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	tmAddCmd.MarkFlagRequired("from")
	tmAddCmd.MarkFlagRequired("to")

	tmCmd.AddCommand(tmListCmd)
	tmCmd.AddCommand(tmShowCmd)

	tmCmd.AddCommand(tmSearchCmd)
	tmSearchCmd.Flags().String("from", "", "Source language")
	tmSearchCmd.Flags().String("to", "", "Target language (default: any)")
	tmSearchCmd.Flags().Float64("min-confidence", 0, "Lowest confidence returned (default: from config)")
	tmSearchCmd.MarkFlagRequired("from")

	tmCmd.AddCommand(tmUpdateCmd)
	tmUpdateCmd.Flags().String("source", "", "New source text")
	tmUpdateCmd.Flags().String("target", "", "New target text")
	tmUpdateCmd.Flags().Float64("confidence", 0, "New confidence in [0, 1]")
	tmUpdateCmd.Flags().String("context", "", "New context")
	tmUpdateCmd.Flags().Bool("verified", false, "Mark the entry verified")
	tmUpdateCmd.Flags().StringSlice("tag", nil, "Replace the tags (repeatable)")

	tmCmd.AddCommand(tmDeleteCmd)

	tmCmd.AddCommand(tmImportCmd)
	tmImportCmd.Flags().String("from", "", "Source language")
	tmImportCmd.Flags().String("to", "", "Target language")
	tmImportCmd.Flags().Float64("confidence", sbs.DefaultEntryConfidence, "Confidence of units without their own")
	tmImportCmd.MarkFlagRequired("from")
	tmImportCmd.MarkFlagRequired("to")

	tmCmd.AddCommand(tmPromoteCmd)
	tmPromoteCmd.Flags().Float64("confidence", sbs.DefaultEntryConfidence, "Confidence in [0, 1]")

	tmCmd.AddCommand(tmSuggestCmd)
	tmSuggestCmd.Flags().Bool("apply", false, "Use the suggestion as the segment's translation")
}
