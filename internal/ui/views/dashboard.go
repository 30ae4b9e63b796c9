package views

import (
	"fmt"
	"strings"

	"searchdeck/internal/metrics"
)

// DashboardHeight is the number of lines the dashboard panel occupies
const DashboardHeight = 6

// DashboardRenderer renders the metrics panel
type DashboardRenderer struct {
	styles *Styles
}

// NewDashboardRenderer creates a new dashboard renderer
func NewDashboardRenderer(styles *Styles) *DashboardRenderer {
	return &DashboardRenderer{styles: styles}
}

// Render renders a metrics snapshot
func (dr *DashboardRenderer) Render(snap metrics.Snapshot, err error) string {
	if err != nil {
		return dr.styles.Dashboard.Render(dr.styles.StatusError.Render("metrics unavailable: " + err.Error()))
	}

	var b strings.Builder
	b.WriteString(dr.styles.Section.Render("Session"))
	if !snap.TakenAt.IsZero() {
		b.WriteString(dr.styles.Dim.Render("  " + snap.TakenAt.Format("15:04:05")))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "queries %d  adopted %d  opened %d  recent cleared %d\n",
		snap.Submitted, snap.LocationAdopted, snap.ResultsOpened, snap.RecentCleared)
	fmt.Fprintf(&b, "cache hit %d  miss %d  revalidate %d  coalesced %d  ratio %.0f%%\n",
		snap.CacheHits, snap.CacheMisses, snap.Revalidations, snap.Coalesced, snap.HitRatio()*100)

	failures := fmt.Sprintf("failed %d", snap.FetchFailures)
	if snap.FetchFailures > 0 {
		failures = dr.styles.StatusError.Render(failures)
	}
	fmt.Fprintf(&b, "fetches %d  %s  avg %s  stale dropped %d",
		snap.Fetches, failures, snap.AvgFetch.Round(100_000), snap.StaleDiscarded)
	if snap.PersistFailures > 0 {
		b.WriteString("  " + dr.styles.StatusWarning.Render(fmt.Sprintf("persist errors %d", snap.PersistFailures)))
	}
	return dr.styles.Dashboard.Render(b.String())
}
