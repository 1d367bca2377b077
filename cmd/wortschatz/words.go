package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mudadib/wortschatz/internal/database"
	"github.com/mudadib/wortschatz/internal/words"
)

type Driver string

func (d *Driver) Set(val string) error {
	for _, driver := range allDrivers {
		if val == string(driver) {
			*d = driver
			return nil
		}
	}
	return fmt.Errorf("invalid driver: %s", val)
}

func (d Driver) String() string {
	return string(d)
}

func (d *Driver) Type() string {
	return "Driver"
}

const (
	DriverSQLite Driver = "sqlite3"
	DriverMySQL  Driver = "mysql"
)

var (
	_          pflag.Value = (*Driver)(nil)
	allDrivers             = []Driver{DriverSQLite, DriverMySQL}
)

func newWordsCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "words",
		Short: "Inspect word extraction and the novelty filter",
	}

	rootCommand.AddCommand(&cobra.Command{
		Use:   "extract <file>",
		Short: "Print the sorted unique words of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extracted, err := words.ExtractFile(args[0])
			if err != nil {
				return fmt.Errorf("words.ExtractFile > %w", err)
			}
			for _, word := range extracted {
				fmt.Fprintln(cmd.OutOrStdout(), word)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d unique words in the text file.\n", len(extracted))
			return nil
		},
	})

	var driver Driver
	filterCommand := &cobra.Command{
		Use:   "filter <file>",
		Short: "Print the extracted words that are not in the vocabulary database yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if driver != "" {
				cfg.Database.Driver = string(driver)
			}

			extracted, err := words.ExtractFile(args[0])
			if err != nil {
				return fmt.Errorf("words.ExtractFile > %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			newWords, err := words.NewDBRepository(db).FilterNew(cmd.Context(), extracted)
			if err != nil {
				return fmt.Errorf("repository.FilterNew > %w", err)
			}
			for _, word := range newWords {
				fmt.Fprintln(cmd.OutOrStdout(), word)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identified %d words that are new to the database.\n", len(newWords))
			return nil
		},
	}
	filterCommand.Flags().Var(&driver, "driver", fmt.Sprintf("database driver to use. Possible values are %v", allDrivers))
	rootCommand.AddCommand(filterCommand)

	return &rootCommand
}
