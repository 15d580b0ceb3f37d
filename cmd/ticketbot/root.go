package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Setiyoaryo/TicketAutomation/pkg/browser"
	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
	"github.com/Setiyoaryo/TicketAutomation/pkg/data"
	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
	"github.com/Setiyoaryo/TicketAutomation/pkg/workflow"
)

var (
	selectorFile string
	inputFile    string
	masterFile   string
	reportDir    string
	headless     bool
	dryRun       bool
)

var rootCmd = &cobra.Command{
	Use:   "ticketbot",
	Short: "Batch ticket creation for DP maintenance on the intranet",
	Long: `ticketbot logs into the intranet, walks to the DP listing page, and
creates a maintenance ticket for every DP code in the daily input file,
using the master data CSV to resolve each code's city and RK.

Every run writes a JSON report with the final outcome per code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&selectorFile, "selectors", "", "YAML selector profile overriding the built-in defaults")
	rootCmd.Flags().StringVar(&inputFile, "input", "", "daily input file with one DP code per line (default from DAILY_INPUT_FILE)")
	rootCmd.Flags().StringVar(&masterFile, "master", "", "master data CSV (default from MASTER_DATA_FILE)")
	rootCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for the run report (default from REPORT_DIR)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run the browser headless")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve the work items and print the plan without opening a browser")
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.NewLogger("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup: %v\n", err)
	}
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("configuration: %v", err)
		return err
	}
	applyFlagOverrides(cmd, cfg)

	sel, err := config.LoadSelectors(selectorFile)
	if err != nil {
		log.Errorf("selector profile: %v", err)
		return err
	}

	master, err := data.LoadMasterData(cfg.MasterDataFile)
	if err != nil {
		log.Errorf("master data: %v", err)
		return err
	}
	codes, err := data.ReadDailyInput(cfg.DailyInputFile)
	if err != nil {
		log.Errorf("daily input: %v", err)
		return err
	}

	items := workflow.BuildWorkItems(codes, master)
	missing := 0
	for _, item := range items {
		if item.Missing {
			missing++
		}
	}
	log.Infof("loaded %d work items (%d without master data) from %s", len(items), missing, cfg.DailyInputFile)

	if dryRun {
		printPlan(log, items)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := browser.NewManager(cfg, log)
	if err != nil {
		log.Errorf("browser startup: %v", err)
		return err
	}
	defer manager.Close()

	session, err := manager.NewSession()
	if err != nil {
		log.Errorf("browser session: %v", err)
		return err
	}

	orch, err := workflow.NewOrchestrator(session, cfg, sel, log)
	if err != nil {
		log.Errorf("engine setup: %v", err)
		return err
	}

	report, runErr := orch.Run(ctx, items)
	if runErr != nil {
		log.Errorf("run aborted: %v", runErr)
	}

	// The report is written even for aborted runs; partial outcomes matter
	path, err := report.WriteFile(cfg.ReportDir)
	if err != nil {
		log.Errorf("report: %v", err)
		if runErr == nil {
			runErr = err
		}
	} else {
		log.Infof("report written to %s", path)
	}

	log.Infof("%s", report.Summary())
	return runErr
}

// applyFlagOverrides lets flags win over environment configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if inputFile != "" {
		cfg.DailyInputFile = inputFile
	}
	if masterFile != "" {
		cfg.MasterDataFile = masterFile
	}
	if reportDir != "" {
		cfg.ReportDir = reportDir
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = headless
	}
}

func printPlan(log *logging.Logger, items []workflow.InputItem) {
	for i, item := range items {
		if item.Missing {
			log.Warnf("[%d/%d] %s: no master data, would be skipped", i+1, len(items), item.Code)
			continue
		}
		log.Infof("[%d/%d] %s: city=%q rk=%q", i+1, len(items), item.Code, item.City, item.RK)
	}
}
