// cmd/tools/lead-export/main.go
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/database"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/leads"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

const exportPageSize = 500

func main() {
	csvCmd := flag.NewFlagSet("csv", flag.ExitOnError)
	jsonCmd := flag.NewFlagSet("json", flag.ExitOnError)

	// CSV command flags
	tierCSV := csvCmd.String("tier", "", "Filter by lead tier (hot, warm, cold)")
	variantCSV := csvCmd.String("variant", "", "Filter by questionnaire variant (business, immigration)")
	sinceCSV := csvCmd.String("since", "", "Only leads created on or after this date (YYYY-MM-DD)")
	untilCSV := csvCmd.String("until", "", "Only leads created before this date (YYYY-MM-DD)")
	outCSV := csvCmd.String("out", "", "Output file (default stdout)")

	// JSON command flags
	tierJSON := jsonCmd.String("tier", "", "Filter by lead tier (hot, warm, cold)")
	variantJSON := jsonCmd.String("variant", "", "Filter by questionnaire variant (business, immigration)")
	sinceJSON := jsonCmd.String("since", "", "Only leads created on or after this date (YYYY-MM-DD)")
	untilJSON := jsonCmd.String("until", "", "Only leads created before this date (YYYY-MM-DD)")
	outJSON := jsonCmd.String("out", "", "Output file (default stdout)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "csv":
		csvCmd.Parse(os.Args[2:])
		run(*tierCSV, *variantCSV, *sinceCSV, *untilCSV, *outCSV, writeCSV)

	case "json":
		jsonCmd.Parse(os.Args[2:])
		run(*tierJSON, *variantJSON, *sinceJSON, *untilJSON, *outJSON, writeJSON)

	case "help", "-h", "--help":
		help()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}
}

func run(tier, variant, since, until, out string, write func(*os.File, []models.LeadSummary) error) {
	window, err := parseWindow(since, until)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	summaries, err := fetch(tier, variant)
	if err != nil {
		fmt.Printf("Error exporting leads: %v\n", err)
		os.Exit(1)
	}
	summaries = window.filter(summaries)

	dst := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			fmt.Printf("Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		dst = f
	}

	if err := write(dst, summaries); err != nil {
		fmt.Printf("Error writing export: %v\n", err)
		os.Exit(1)
	}

	if out != "" {
		fmt.Printf("Exported %d leads to %s\n", len(summaries), out)
	}
}

func fetch(tier, variant string) ([]models.LeadSummary, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := leads.NewRepository(pg.DB, nil, logger.NewNoOpLogger())

	filter := models.LeadFilter{
		Tier:    scoring.LeadTier(tier),
		Variant: variant,
		Limit:   exportPageSize,
	}

	var all []models.LeadSummary
	for {
		page, err := repo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list leads: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
		filter.Offset += exportPageSize
	}
}

// dateWindow narrows exports to a creation-date range. Zero bounds are
// open-ended.
type dateWindow struct {
	since time.Time
	until time.Time
}

func parseWindow(since, until string) (dateWindow, error) {
	var w dateWindow
	var err error
	if since != "" {
		if w.since, err = time.Parse("2006-01-02", since); err != nil {
			return w, fmt.Errorf("invalid -since date %q: %w", since, err)
		}
	}
	if until != "" {
		if w.until, err = time.Parse("2006-01-02", until); err != nil {
			return w, fmt.Errorf("invalid -until date %q: %w", until, err)
		}
	}
	return w, nil
}

func (w dateWindow) filter(summaries []models.LeadSummary) []models.LeadSummary {
	if w.since.IsZero() && w.until.IsZero() {
		return summaries
	}
	out := summaries[:0]
	for _, s := range summaries {
		if !w.since.IsZero() && s.CreatedAt.Before(w.since) {
			continue
		}
		if !w.until.IsZero() && !s.CreatedAt.Before(w.until) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func writeCSV(dst *os.File, summaries []models.LeadSummary) error {
	w := csv.NewWriter(dst)
	if err := w.Write([]string{"id", "name", "email", "variant", "score", "tier", "created_at"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			s.ID,
			s.Name,
			s.Email,
			s.Variant,
			strconv.Itoa(s.Score),
			string(s.Tier),
			s.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(dst *os.File, summaries []models.LeadSummary) error {
	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func help() {
	fmt.Println("Lead Export Tool")
	fmt.Println("Usage:")
	fmt.Println("  lead-export csv [-tier hot|warm|cold] [-variant business|immigration] [-since YYYY-MM-DD] [-until YYYY-MM-DD] [-out file.csv]")
	fmt.Println("  lead-export json [-tier hot|warm|cold] [-variant business|immigration] [-since YYYY-MM-DD] [-until YYYY-MM-DD] [-out file.json]")
	fmt.Println("  lead-export help")
}
