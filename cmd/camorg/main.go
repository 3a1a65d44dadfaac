package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"camorg/internal/app"
	"camorg/internal/config"
	"camorg/internal/organizer"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// errRunFailed is returned when an organize run left matching files behind.
var errRunFailed = errors.New("some files could not be moved")

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status. A missing
// Dropbox root aborts with 2 so scripts can tell it from a partial run.
func exitCode(err error) int {
	if errors.Is(err, organizer.ErrDropboxRootNotFound) {
		return 2
	}
	return 1
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a CamorgApp. The caller must defer
// app.Close(). Mutating commands take the process lock.
func newApp(cmd *cobra.Command, mutating bool) (*app.CamorgApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewCamorgApp(cfg, app.Options{Mutating: mutating, Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// closeApp closes a and keeps the first error.
func closeApp(a *app.CamorgApp, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

var rootCmd = &cobra.Command{
	Use:          "camorg",
	Short:        "Sort Dropbox Camera Uploads into dated folders",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Host ID:        %s\n", cfg.HostID)
		fmt.Printf("Base Dir:       %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Dropbox:        %s\n", cfg.Dropbox.Root)
		fmt.Printf("Camera Uploads: %s\n", cfg.Dropbox.CameraUploads)
		fmt.Printf("Destination:    %s\n", cfg.Dropbox.Destination)
		fmt.Printf("Layout:         %s\n", cfg.Dropbox.Layout)
		fmt.Printf("Cleanup:        %t\n", cfg.Dropbox.Cleanup)
		fmt.Printf("Encryption:     %s\n", cfg.Encryption.Type)

		if len(cfg.Archives) > 0 {
			rows := make([][]string, 0, len(cfg.Archives))
			for _, a := range cfg.Archives {
				location := a.FSArchiveRoot
				if a.Type == "s3" {
					location = "s3://" + a.S3Bucket + "/" + a.S3Prefix
				}
				rows = append(rows, []string{a.Name, a.Type, location})
			}
			fmt.Println()
			fmt.Println(renderTable([]column{col("Archive"), col("Type"), col("Location")}, rows, nil))
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate journal encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase, err := newPassphrase()
		if err != nil {
			return err
		}
		if err := app.SetupKeys(cfg, passphrase); err != nil {
			return err
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// organize command
var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Move camera uploads into dated folders",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		flags := cmd.Flags()
		var p app.OrganizeParams
		p.Root, _ = flags.GetString("root")
		p.Source, _ = flags.GetString("source")
		p.Destination, _ = flags.GetString("destination")
		p.Layout, _ = flags.GetString("layout")
		p.Cleanup, _ = flags.GetBool("cleanup")
		p.DryRun, _ = flags.GetBool("dry-run")

		a, err := newApp(cmd, !p.DryRun)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		result, err := a.Organize(p)
		if err != nil {
			return err
		}

		fmt.Println(organizeSummary(result, p.DryRun))
		if !result.Success {
			return errRunFailed
		}
		return nil
	},
}

// organizeSummary is the one-line report printed after an organize run.
func organizeSummary(result *organizer.OrganizeResult, dryRun bool) string {
	switch {
	case result.SourceMissing:
		return "Nothing to organize."
	case dryRun:
		return fmt.Sprintf("Would move %d file(s)", result.Planned)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Moved %d file(s)", result.Moved)
	if result.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", result.Failed)
	}
	if result.Cleaned {
		fmt.Fprintf(&b, ", removed %d empty directories", result.Pruned)
	}
	return b.String()
}

// prune command
var pruneCmd = &cobra.Command{
	Use:   "prune [PATH]",
	Short: "Remove empty directories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		target := ""
		if len(args) > 0 {
			target = args[0]
		}

		removed, err := a.Prune(target)
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d empty directories\n", removed)
		return nil
	},
}

// match command
var matchCmd = &cobra.Command{
	Use:   "match NAME...",
	Short: "Show how file names are parsed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layoutName, _ := cmd.Flags().GetString("layout")
		layout, err := organizer.ParseLayout(layoutName)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(args))
		for _, name := range args {
			m, ok := organizer.Match(name)
			if !ok {
				rows = append(rows, []string{name, noMatch})
				continue
			}
			burst := ""
			if m.HasBurst {
				burst = strconv.Itoa(m.Burst)
			}
			rows = append(rows, []string{
				name,
				fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", m.Year, m.Month, m.Day, m.Hour, m.Minute, m.Second),
				yesNo(m.HDR),
				burst,
				m.ConflictUser,
				layout.RelativePath(m, name),
			})
		}

		fmt.Println(renderTable(
			[]column{col("Name"), col("Taken"), col("HDR"), rightCol("Burst"), col("Conflict"), col("Destination")},
			rows,
			nil,
		))
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		runs, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		var moved, failed int64
		for _, run := range runs {
			moved += run.Moved
			failed += run.Failed
			duration := ""
			if run.FinishedAt.Valid {
				d := run.FinishedAt.Time.Sub(run.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			rows = append(rows, []string{
				strconv.FormatInt(run.ID, 10),
				run.Operation,
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Status,
				strconv.FormatInt(run.Moved, 10),
				strconv.FormatInt(run.Failed, 10),
				duration,
			})
		}
		fmt.Println(renderTable(
			[]column{rightCol("#"), col("Operation"), col("Started"), col("Status"), rightCol("Moved"), rightCol("Failed"), rightCol("Duration")},
			rows,
			[]string{"", fmt.Sprintf("%d runs", len(runs)), "", "", strconv.FormatInt(moved, 10), strconv.FormatInt(failed, 10)},
		))
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log RUN_ID",
	Short: "View the moves of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q", args[0])
		}

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		run, moves, err := a.GetRunMoves(runID)
		if err != nil {
			return err
		}

		fmt.Printf("#%d  %s  %s  %s\n", run.ID, run.Operation, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Status)
		fmt.Printf("%s\n", run.Parameters)

		if len(moves) == 0 {
			fmt.Println("No moves recorded.")
			return nil
		}

		rows := make([][]string, 0, len(moves))
		for _, m := range moves {
			rows = append(rows, []string{m.Status, m.SourcePath, m.DestinationPath, m.Error})
		}
		fmt.Println(renderTable([]column{col("Status"), col("Source"), col("Destination"), col("Error")}, rows, nil))
		return nil
	},
}

// journal command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage the run journal",
}

var journalPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local journal with the archived snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if cfg.Encryption.Type == "age" {
			if passphrase, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}

		version, err := app.PullJournal(cfg, passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("Journal restored at version %d\n", version)
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// journal subcommands
	journalCmd.AddCommand(journalPullCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().String("root", "", "Dropbox directory (default from config)")
	organizeCmd.Flags().String("source", "", "Camera uploads directory, absolute or relative to the Dropbox directory")
	organizeCmd.Flags().String("destination", "", "Destination directory, absolute or relative to the Dropbox directory")
	organizeCmd.Flags().StringP("layout", "l", "", "Folder layout: full, month_only or short")
	organizeCmd.Flags().BoolP("cleanup", "c", false, "Remove empty directories from the destination afterwards")
	organizeCmd.Flags().BoolP("dry-run", "n", false, "Show what would be moved without moving anything")
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringP("layout", "l", "full", "Folder layout used for the Destination column")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(journalCmd)
}
