package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/report"
)

func newClassifyCmd(a *app) *cobra.Command {
	var (
		file    string
		pageURL string
	)

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Ask whether text reads as human-written",
		Long:  "Classify the given text. With no arguments, or --file -, the text is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := classifyInput(a.in, file, args)
			if err != nil {
				return err
			}

			session, err := a.mountSession(cmd.Context(), "")
			if err != nil {
				return err
			}
			classifier, err := session.Classifier()
			if err != nil {
				return err
			}
			resp, err := classifier.Trigger(cmd.Context(), text, pageURL)
			if err != nil {
				return err
			}
			return report.WriteClassification(a.out, resp)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read text from a file (- for stdin)")
	cmd.Flags().StringVar(&pageURL, "url", "", "page the text came from")
	return cmd
}

func classifyInput(in io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "" && file != "-":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("context: %w", err)
		}
		return string(b), nil
	case file == "-" || len(args) == 0:
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("context: %w", err)
		}
		return string(b), nil
	default:
		return strings.Join(args, " "), nil
	}
}
