package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/aero-scope/internal/tracker"
	"github.com/unklstewy/aero-scope/pkg/config"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

// App represents the dashboard application
type App struct {
	tracker *tracker.Service
	cfg     *config.Config

	tviewApp   *tview.Application
	table      *tview.Table
	statsPanel *tview.TextView
	statusBar  *tview.TextView
	search     *tview.InputField
	rootLayout *tview.Flex

	filter string
}

// NewApp creates a new dashboard instance
func NewApp(trk *tracker.Service, cfg *config.Config) *App {
	a := &App{
		tracker: trk,
		cfg:     cfg,
	}
	a.setupUI()
	return a
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBorder(true).SetTitle(" Flights ")

	a.statsPanel = tview.NewTextView().SetDynamicColors(true)
	a.statsPanel.SetBorder(true).SetTitle(" Statistics ")

	a.statusBar = tview.NewTextView().SetDynamicColors(true)

	a.search = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(24).
		SetChangedFunc(func(text string) {
			a.filter = text
			a.renderTable()
		})
	a.search.SetDoneFunc(func(key tcell.Key) {
		a.tviewApp.SetFocus(a.table)
	})

	a.rootLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(a.table, 0, 3, true).
			AddItem(a.statsPanel, 0, 1, false), 0, 1, true).
		AddItem(a.search, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.tviewApp.SetInputCapture(a.handleKeyboard)
}

// Run starts the dashboard: an initial refresh, then the update listener
// and the UI event loop.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		a.setStatus("loading...")
		_ = a.tracker.Refresh(ctx, false)
		a.redraw()
	}()

	if a.cfg.Refresh.AutoEnabled {
		a.tracker.Start(ctx)
		defer a.tracker.Stop()
	}

	updates := a.tracker.Subscribe()
	defer a.tracker.Unsubscribe(updates)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-updates:
				a.redraw()
			}
		}
	}()

	return a.tviewApp.SetRoot(a.rootLayout, true).Run()
}

func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	if a.tviewApp.GetFocus() == a.search {
		return event
	}

	switch event.Rune() {
	case 'q':
		a.tviewApp.Stop()
		return nil
	case 'r':
		go func() {
			a.setStatus("refreshing...")
			_ = a.tracker.Refresh(context.Background(), true)
			a.redraw()
		}()
		return nil
	case '/':
		a.tviewApp.SetFocus(a.search)
		return nil
	}
	return event
}

// redraw re-renders all panels from the tracker's current snapshot.
func (a *App) redraw() {
	a.tviewApp.QueueUpdateDraw(func() {
		a.renderTable()
		a.renderStats()
		a.renderStatus()
	})
}

func (a *App) renderTable() {
	a.table.Clear()

	headers := []string{"ICAO24", "Callsign", "Country", "Alt (ft)", "Speed (km/h)", "Heading", "Ground"}
	for col, h := range headers {
		a.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	row := 1
	for _, f := range a.tracker.Flights() {
		if !a.matches(f) {
			continue
		}
		a.table.SetCell(row, 0, tview.NewTableCell(f.ICAO24))
		a.table.SetCell(row, 1, tview.NewTableCell(f.Callsign))
		a.table.SetCell(row, 2, tview.NewTableCell(f.OriginCountry))
		a.table.SetCell(row, 3, tview.NewTableCell(measurement(f.Altitude)))
		a.table.SetCell(row, 4, tview.NewTableCell(measurement(f.Velocity)))
		a.table.SetCell(row, 5, tview.NewTableCell(measurement(f.Heading)))
		a.table.SetCell(row, 6, tview.NewTableCell(boolMark(f.OnGround)))
		row++
	}
}

// matches applies the search filter against icao24, callsign and country.
func (a *App) matches(f flight.Record) bool {
	if a.filter == "" {
		return true
	}
	needle := strings.ToLower(a.filter)
	return strings.Contains(strings.ToLower(f.ICAO24), needle) ||
		strings.Contains(strings.ToLower(f.Callsign), needle) ||
		strings.Contains(strings.ToLower(f.OriginCountry), needle)
}

func (a *App) renderStats() {
	st := a.tracker.Statistics()
	if st == nil {
		a.statsPanel.SetText("no data yet")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Total flights:[-] %d\n", st.TotalFlights)
	fmt.Fprintf(&b, "[yellow]Countries:[-] %d\n", st.CountriesCount)
	fmt.Fprintf(&b, "[yellow]Avg altitude:[-] %.0f ft\n", st.AverageAltitude)
	fmt.Fprintf(&b, "[yellow]Avg speed:[-] %.0f km/h\n", st.AverageSpeed)
	fmt.Fprintf(&b, "[yellow]Max altitude:[-] %.0f ft\n", st.MaxAltitude)
	fmt.Fprintf(&b, "[yellow]Max speed:[-] %.0f km/h\n\n", st.MaxSpeed)

	b.WriteString("[yellow]Top countries[-]\n")
	for _, tc := range st.TopCountries {
		fmt.Fprintf(&b, "%2d. %-20s %d\n", tc.Rank, tc.Country, tc.Count)
	}

	a.statsPanel.SetText(b.String())
}

func (a *App) renderStatus() {
	if err := a.tracker.Err(); err != nil {
		// Keep showing the last good data; only the status line changes.
		a.statusBar.SetText(fmt.Sprintf("[red]error:[-] %v  (r to retry, q to quit)", err))
		return
	}
	last := "never"
	if t := a.tracker.LastUpdate(); !t.IsZero() {
		last = t.Format(time.Kitchen)
	}
	a.statusBar.SetText(fmt.Sprintf("updated %s | r refresh, / search, q quit", last))
}

func (a *App) setStatus(msg string) {
	a.tviewApp.QueueUpdateDraw(func() {
		a.statusBar.SetText(msg)
	})
}

func measurement(m *flight.Measurement) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", m.Value)
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
