package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhartung/resume-optimizer/internal/extract"
	"github.com/mhartung/resume-optimizer/internal/tokens"
)

var (
	extractFormat     string
	extractTokenModel string
)

var extractTextCmd = &cobra.Command{
	Use:   "extract-text <file>",
	Short: "Extract raw text from a PDF, DOC or DOCX file",
	Long:  `Extract raw text from a document file and print it to stdout, along with the estimated token count on stderr. Useful for checking what the pipeline will see before uploading.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtractText,
}

func init() {
	extractTextCmd.Flags().StringVar(&extractFormat, "format", "", "File format (pdf, doc, docx); defaults to the file extension")
	extractTextCmd.Flags().StringVar(&extractTokenModel, "token-model", "gpt-4", "Tokenizer model for the token estimate")
	rootCmd.AddCommand(extractTextCmd)
}

func runExtractText(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	format := extractFormat
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	text, err := extract.Text(data, format)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)

	estimator := tokens.NewEstimator(extractTokenModel)
	fmt.Fprintf(cmd.ErrOrStderr(), "estimated tokens: %d\n", estimator.Estimate(text))
	return nil
}
