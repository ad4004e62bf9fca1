package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/config"
	"github.com/fxdash/dashboard/internal/model"
	"github.com/fxdash/dashboard/internal/performance"
	"github.com/fxdash/dashboard/internal/remote"
	"github.com/fxdash/dashboard/internal/store"
	"github.com/fxdash/dashboard/internal/tradestats"
)

// version is set at build time via ldflags in the release pipeline.
var version = "dev"

var hundred = decimal.NewFromInt(100)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "report":
		runReport(os.Args[2:])
	case "push":
		runPush(os.Args[2:])
	case "backup":
		runBackup(os.Args[2:])
	case "version":
		fmt.Printf("dashctl v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runReport(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("report", flag.ExitOnError)

	file := fs.String("file", cfg.DataFile, "Accounts JSON file")
	url := fs.String("url", "", "Fetch the dataset from this URL instead of --file")
	timeout := fs.Duration("timeout", 15*time.Second, "Fetch timeout")

	fs.StringVar(file, "f", cfg.DataFile, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dashctl report [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var ds *model.Dataset
	var err error
	if *url != "" {
		ds, err = remote.Fetch(ctx, nil, *url)
	} else {
		ds, err = store.NewFileStore(*file).Load(ctx)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if len(ds.Accounts) == 0 {
		log.Println("No accounts found.")
		return
	}
	printReport(os.Stdout, ds)
}

func runPush(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("push", flag.ExitOnError)

	file := fs.String("file", cfg.DataFile, "Accounts JSON file to upload")
	primary := fs.String("primary", cfg.SavePrimaryURL, "Primary save URL")
	fallback := fs.String("fallback", cfg.SaveFallbackURL, "Fallback save URL")
	timeout := fs.Duration("timeout", 30*time.Second, "Overall timeout")

	fs.StringVar(file, "f", cfg.DataFile, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dashctl push [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ds, err := store.NewFileStore(*file).Load(ctx)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	res := remote.NewSaver(nil, *primary, *fallback).Save(ctx, ds)
	if !res.Saved {
		log.Fatalf("Save failed: %s", res.Reason)
	}
	fmt.Printf("Saved %d accounts to %s\n", len(ds.Accounts), res.Target)
}

func runBackup(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	file := fs.String("file", cfg.DataFile, "Accounts JSON file to back up")
	fs.StringVar(file, "f", cfg.DataFile, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dashctl backup [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path, err := store.NewFileStore(*file).Backup(context.Background())
	if err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	fmt.Printf("Backup written to %s\n", path)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// printReport writes one row per account: gain, worst drawdown and latest
// month return from the monthly series, trade count and profit factor from
// the resolved trade statistics.
func printReport(w io.Writer, ds *model.Dataset) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "#\tNAME\tDEPOSIT\tPROFIT\tGAIN%%\tMAX DD%%\tMONTH%%\tTRADES\tPF\n")
	fmt.Fprintf(tw, "─\t────\t───────\t──────\t─────\t───────\t──────\t──────\t──\n")

	totDeposit := decimal.Zero
	totProfit := decimal.Zero

	for i, acc := range ds.Accounts {
		sum := performance.Summarize(i, acc)
		adv := tradestats.Resolve(acc, acc.Trades)

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i,
			sum.DisplayName,
			sum.Metrics.TotalDeposit.StringFixed(2),
			formatPL(sum.Metrics.TotalProfit),
			sum.GainPct.Mul(hundred).StringFixed(2),
			sum.DrawdownPct.Mul(hundred).StringFixed(2),
			sum.MonthReturn.Mul(hundred).StringFixed(2),
			adv.Trades,
			adv.ProfitFactor.StringFixed(2),
		)

		totDeposit = totDeposit.Add(sum.Metrics.TotalDeposit)
		totProfit = totProfit.Add(sum.Metrics.TotalProfit)
	}

	fmt.Fprintf(tw, "\t\t\t\t\t\t\t\t\n")
	fmt.Fprintf(tw, "\tTOTAL\t%s\t%s\t\t\t\t\t\n", totDeposit.StringFixed(2), formatPL(totProfit))
	tw.Flush()
}

func formatPL(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + v.StringFixed(2)
	}
	return v.StringFixed(2)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `dashctl v%s - Trading accounts dashboard tool

Usage:
  dashctl <command> [options]

Commands:
  report    Print account performance from a file or URL
  push      Upload the accounts file to the save server
  backup    Write a timestamped copy of the accounts file
  version   Print version
  help      Show this help

Examples:
  dashctl report                                      # Uses DATA_FILE
  dashctl report --url http://localhost:8080/data/accounts.json
  dashctl push -f data/accounts.json --primary http://dash.local/save-data
  dashctl backup -f data/accounts.json

Configuration:
  Defaults come from the environment or a .env file:
    DATA_FILE=data/accounts.json
    SAVE_PRIMARY_URL=http://localhost:8080/save-data
    SAVE_FALLBACK_URL=http://localhost:8001/save-data

`, version)
}
