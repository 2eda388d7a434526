package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sbs-go/internal/app"
	"sbs-go/internal/model"
)

var segCmd = &cobra.Command{
	Use:   "seg",
	Short: "Translate and mark up segments",
}

var segTranslateCmd = &cobra.Command{
	Use:   "translate DOC SEG [TEXT]",
	Short: "Set or clear the translation of a segment",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text *string
		if len(args) == 3 {
			text = &args[2]
		}

		return withApp(cmd, "UpdateSegmentTarget", func(a *app.SBSApp) error {
			seg, err := a.Service().UpdateSegmentTarget(context.Background(), a.UserID(), args[0], args[1], text)
			if err != nil {
				return err
			}
			printSegment(seg, termWidth())
			return nil
		})
	},
}

var segAnnotateCmd = &cobra.Command{
	Use:   "annotate DOC SEG START END TEXT",
	Short: "Attach a note to characters [START, END) of the source text",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseSpan(args[2], args[3])
		if err != nil {
			return err
		}

		return withApp(cmd, "AddAnnotation", func(a *app.SBSApp) error {
			ann, err := a.Service().AddAnnotation(context.Background(), a.UserID(), args[0], args[1], args[4], start, end)
			if err != nil {
				return err
			}
			fmt.Printf("Added annotation %s\n", ann.ID)
			return nil
		})
	},
}

var segRedactCmd = &cobra.Command{
	Use:   "redact DOC SEG START END",
	Short: "Redact characters [START, END) of the source text",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseSpan(args[2], args[3])
		if err != nil {
			return err
		}
		var reason *string
		if cmd.Flags().Changed("reason") {
			v, _ := cmd.Flags().GetString("reason")
			reason = &v
		}

		return withApp(cmd, "AddRedaction", func(a *app.SBSApp) error {
			red, err := a.Service().AddRedaction(context.Background(), a.UserID(), args[0], args[1], start, end, reason)
			if err != nil {
				return err
			}
			fmt.Printf("Added redaction %s\n", red.ID)
			return nil
		})
	},
}

var segUnannotateCmd = &cobra.Command{
	Use:   "unannotate DOC SEG ANNOTATION",
	Short: "Remove an annotation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "RemoveAnnotation", func(a *app.SBSApp) error {
			removed, err := a.Service().RemoveAnnotation(context.Background(), a.UserID(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			reportRemoved("annotation", args[2], removed)
			return nil
		})
	},
}

var segUnredactCmd = &cobra.Command{
	Use:   "unredact DOC SEG REDACTION",
	Short: "Remove a redaction",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "RemoveRedaction", func(a *app.SBSApp) error {
			removed, err := a.Service().RemoveRedaction(context.Background(), a.UserID(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			reportRemoved("redaction", args[2], removed)
			return nil
		})
	},
}

func parseSpan(startArg, endArg string) (int, int, error) {
	start, err := strconv.Atoi(startArg)
	if err != nil {
		return 0, 0, model.NewValidation("start", "%q is not a number", startArg)
	}
	end, err := strconv.Atoi(endArg)
	if err != nil {
		return 0, 0, model.NewValidation("end", "%q is not a number", endArg)
	}
	return start, end, nil
}

func reportRemoved(kind, id string, removed bool) {
	if removed {
		fmt.Printf("Removed %s %s\n", kind, id)
		return
	}
	fmt.Printf("No %s %s, nothing removed\n", kind, id)
}

func init() {
	segCmd.AddCommand(segTranslateCmd)
	segCmd.AddCommand(segAnnotateCmd)
	segCmd.AddCommand(segRedactCmd)
	segRedactCmd.Flags().String("reason", "", "Why the text is redacted")
	segCmd.AddCommand(segUnannotateCmd)
	segCmd.AddCommand(segUnredactCmd)
}
