package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mudadib/wortschatz/internal/database"
	"github.com/mudadib/wortschatz/internal/inference/gemini"
	"github.com/mudadib/wortschatz/internal/pipeline"
	"github.com/mudadib/wortschatz/internal/runlog"
	"github.com/mudadib/wortschatz/internal/sqlgen"
	"github.com/mudadib/wortschatz/internal/words"
)

func newGenerateCommand() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Translate new words from the input text and generate SQL insert statements",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if inputFile == "" {
				inputFile = cfg.Input.TextFile
			}
			if inputFile == "" {
				return fmt.Errorf("no input text file: set input.text_file or pass --input")
			}

			errorLog, err := runlog.NewErrorLog(cfg.Outputs.ErrorLog)
			if err != nil {
				return fmt.Errorf("runlog.NewErrorLog > %w", err)
			}
			responseLog, err := runlog.NewResponseLog(cfg.Outputs.ResponseLog)
			if err != nil {
				return fmt.Errorf("runlog.NewResponseLog > %w", err)
			}

			// The SQL script is written out even when the run aborts midway,
			// so that everything accumulated so far survives.
			generator := sqlgen.NewGenerator()
			defer func() {
				if err := writeSQLFile(cfg.Outputs.SQLFile, generator); err != nil && retErr == nil {
					retErr = err
				}
			}()

			allWords, err := words.ExtractFile(inputFile)
			if err != nil {
				return fmt.Errorf("words.ExtractFile > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d unique words in the text file.\n", len(allWords))
			if len(allWords) == 0 {
				return nil
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			ctx := cmd.Context()
			newWords, err := words.NewDBRepository(db).FilterNew(ctx, allWords)
			if err != nil {
				return fmt.Errorf("repository.FilterNew > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identified %d words that are new to the database.\n", len(newWords))
			if len(newWords) == 0 {
				return nil
			}

			if cfg.Gemini.AccessToken == "" || cfg.Gemini.Location == "" || cfg.Gemini.Endpoint == "" {
				err := fmt.Errorf("gemini client is not configured: location, endpoint and GOOGLE_ACCESS_TOKEN are required")
				if logErr := errorLog.Append("CRITICAL SCRIPT ERROR", err.Error(), nil); logErr != nil {
					return fmt.Errorf("errorLog.Append > %w. Reason: %w", logErr, err)
				}
				return err
			}
			client := gemini.NewClient(cfg.Gemini.AccessToken, cfg.Gemini.Location, cfg.Gemini.ModelResource(), gemini.GenerationConfig{
				Temperature:     cfg.Gemini.Temperature,
				TopP:            cfg.Gemini.TopP,
				MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
			})
			defer func() {
				_ = client.Close()
			}()

			summary, err := pipeline.New(client, generator, errorLog, responseLog, cfg.Retry).Run(ctx, newWords)

			color.Green("Successfully processed and generated SQL for %d words.", summary.Succeeded)
			if summary.Failed > 0 {
				color.Red("Failed to process %d words. Check %s.", summary.Failed, cfg.Outputs.ErrorLog)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "", "text file to extract words from (overrides input.text_file)")
	return cmd
}

func writeSQLFile(path string, generator *sqlgen.Generator) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := generator.WriteTo(file); err != nil {
		return fmt.Errorf("generator.WriteTo > %w", err)
	}
	return nil
}
