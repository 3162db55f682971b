package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mhartung/resume-optimizer/internal/config"
	"github.com/mhartung/resume-optimizer/internal/db"
	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/pipeline"
	"github.com/mhartung/resume-optimizer/internal/tokens"
)

// Flags shared by the pipeline subcommands.
var (
	opUserID     string
	opLanguage   string
	opDocumentID string

	opResumeID         string
	opCoverLetterID    string
	opJobDescriptionID string
	opUseOptimized     bool
	opUpdateAnalysisID string

	opAnalysisID string
	opTarget     string
)

var extractStructuredCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run structured extraction for one document",
	Long:  `Run the LLM extraction stage for a stored document and print the resulting structured JSON. The document must belong to the given user.`,
	RunE:  runExtractStructured,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the ATS analysis over a resume, cover letter and job description",
	RunE:  runAnalyze,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a resume or cover letter from an analysis",
	Long:  `Apply the improvement suggestions of a stored analysis to its resume or cover letter and print the optimized document.`,
	RunE:  runOptimize,
}

func init() {
	for _, cmd := range []*cobra.Command{extractStructuredCmd, analyzeCmd, optimizeCmd} {
		cmd.Flags().StringVar(&opUserID, "user", "", "Owner user ID (required)")
		cmd.Flags().StringVar(&opLanguage, "language", "en", "Prompt language (en, de, pl)")
		_ = cmd.MarkFlagRequired("user")
	}

	extractStructuredCmd.Flags().StringVar(&opDocumentID, "document", "", "Document ID (required)")
	_ = extractStructuredCmd.MarkFlagRequired("document")

	analyzeCmd.Flags().StringVar(&opResumeID, "resume", "", "Resume document ID (required)")
	analyzeCmd.Flags().StringVar(&opCoverLetterID, "coverletter", "", "Cover letter document ID (required)")
	analyzeCmd.Flags().StringVar(&opJobDescriptionID, "jobdescription", "", "Job description document ID (required)")
	analyzeCmd.Flags().BoolVar(&opUseOptimized, "optimized", false, "Analyze the optimized resume and cover letter payloads")
	analyzeCmd.Flags().StringVar(&opUpdateAnalysisID, "update", "", "Existing analysis ID to update in place")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("coverletter")
	_ = analyzeCmd.MarkFlagRequired("jobdescription")

	optimizeCmd.Flags().StringVar(&opAnalysisID, "analysis", "", "Analysis ID (required)")
	optimizeCmd.Flags().StringVar(&opTarget, "target", "resume", "Optimization target: resume or coverletter")
	_ = optimizeCmd.MarkFlagRequired("analysis")

	rootCmd.AddCommand(extractStructuredCmd, analyzeCmd, optimizeCmd)
}

// withPipeline wires the database, LLM client and estimator from the
// environment and hands a ready pipeline to fn.
func withPipeline(ctx context.Context, fn func(*pipeline.Pipeline) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	estimator := tokens.NewEstimator(cfg.TokenizerModel)
	return fn(pipeline.New(database, client, estimator, cfg.MaxDocumentTokens))
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}

func runExtractStructured(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(opUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	docID, err := uuid.Parse(opDocumentID)
	if err != nil {
		return fmt.Errorf("invalid --document: %w", err)
	}

	ctx := cmd.Context()
	return withPipeline(ctx, func(p *pipeline.Pipeline) error {
		result, err := p.ExtractStructured(ctx, docID, userID, opLanguage)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	})
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(opUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	in := pipeline.AnalyzeInput{
		Language:                opLanguage,
		UseOptimizedResume:      opUseOptimized,
		UseOptimizedCoverLetter: opUseOptimized,
	}
	if in.ResumeID, err = uuid.Parse(opResumeID); err != nil {
		return fmt.Errorf("invalid --resume: %w", err)
	}
	if in.CoverLetterID, err = uuid.Parse(opCoverLetterID); err != nil {
		return fmt.Errorf("invalid --coverletter: %w", err)
	}
	if in.JobDescriptionID, err = uuid.Parse(opJobDescriptionID); err != nil {
		return fmt.Errorf("invalid --jobdescription: %w", err)
	}
	if opUpdateAnalysisID != "" {
		id, err := uuid.Parse(opUpdateAnalysisID)
		if err != nil {
			return fmt.Errorf("invalid --update: %w", err)
		}
		in.UpdateAnalysisID = &id
	}

	ctx := cmd.Context()
	return withPipeline(ctx, func(p *pipeline.Pipeline) error {
		result, err := p.AnalyzeATS(ctx, userID, in)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	})
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(opUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	analysisID, err := uuid.Parse(opAnalysisID)
	if err != nil {
		return fmt.Errorf("invalid --analysis: %w", err)
	}

	ctx := cmd.Context()
	return withPipeline(ctx, func(p *pipeline.Pipeline) error {
		var result any
		switch opTarget {
		case "resume":
			result, err = p.OptimizeResume(ctx, analysisID, userID, opLanguage)
		case "coverletter":
			result, err = p.OptimizeCoverLetter(ctx, analysisID, userID, opLanguage)
		default:
			return fmt.Errorf("invalid --target %q (expected resume or coverletter)", opTarget)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	})
}
