// Aero Scope Snapshot
// One-shot CLI: fetches the current flight collection and prints a styled
// statistics summary to the terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/aero-scope/internal/logging"
	"github.com/unklstewy/aero-scope/internal/repository"
	"github.com/unklstewy/aero-scope/internal/stats"
	"github.com/unklstewy/aero-scope/pkg/config"
	"github.com/unklstewy/aero-scope/pkg/fixture"
	"github.com/unklstewy/aero-scope/pkg/flight"
	"github.com/unklstewy/aero-scope/pkg/opensky"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	country    = flag.String("country", "", "Filter by exact origin country")
	timeout    = flag.Duration("timeout", 60*time.Second, "Overall fetch timeout")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}
	logging.Init("error", "console")

	var source flight.Source
	repoOpts := []repository.Option{}
	if cfg.Source.UseMockData {
		variant, err := fixture.ParseVariant(cfg.Source.MockDataType)
		if err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
			os.Exit(1)
		}
		src := fixture.New(variant)
		src.SetDelay(cfg.MockDelay())
		source = src
	} else {
		source = opensky.NewClient(opensky.WithBaseURL(cfg.Source.BaseURL))
		repoOpts = append(repoOpts, repository.WithRateLimiter(
			opensky.NewRateLimiter(opensky.NewLimiterState())))
	}

	repo := repository.New(source, repoOpts...)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var flights []flight.Record
	if *country != "" {
		flights, err = repo.GetFlightsByCountry(ctx, *country)
	} else {
		flights, err = repo.GetAllFlights(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("fetch failed: "+err.Error()))
		os.Exit(1)
	}

	st := stats.NewCalculator().Calculate(flights)
	fmt.Println(render(st, *country))
}

func render(st stats.Statistics, country string) string {
	var b strings.Builder

	title := "Aero Scope Flight Snapshot"
	if country != "" {
		title += " (" + country + ")"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	line := func(label string, format string, args ...interface{}) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(format, args...)))
		b.WriteString("\n")
	}
	line("Total flights", "%d", st.TotalFlights)
	line("Countries", "%d", st.CountriesCount)
	line("Avg altitude", "%.0f ft", st.AverageAltitude)
	line("Avg speed", "%.0f km/h", st.AverageSpeed)
	line("Max altitude", "%.0f ft", st.MaxAltitude)
	line("Max speed", "%.0f km/h", st.MaxSpeed)

	if len(st.AltitudeDistribution) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Altitude distribution"))
		b.WriteString("\n")
		maxCount := 0
		for _, r := range st.AltitudeDistribution {
			if r.Count > maxCount {
				maxCount = r.Count
			}
		}
		for _, r := range st.AltitudeDistribution {
			bar := ""
			if maxCount > 0 {
				bar = strings.Repeat("█", r.Count*30/maxCount)
			}
			b.WriteString(fmt.Sprintf("%18s %4d %s\n",
				dimStyle.Render(r.Label), r.Count, barStyle.Render(bar)))
		}
	}

	if len(st.TopCountries) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Top countries"))
		b.WriteString("\n")
		for _, tc := range st.TopCountries {
			b.WriteString(fmt.Sprintf("%3d. %-24s %d\n", tc.Rank, tc.Country, tc.Count))
		}
	}

	return b.String()
}
