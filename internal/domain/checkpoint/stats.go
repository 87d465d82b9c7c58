package checkpoint

import (
	"math"

	"github.com/ganot/punchlist/internal/domain/catalog"
)

// CategoryStats counts completed checkpoints of one category and phase.
// Only overlays with a complies or defect status count as completed.
func CategoryStats(cat *catalog.Catalog, src OverlaySource, projectID, categoryID string, phase catalog.Phase) CategoryProgress {
	stats := CategoryProgress{CategoryID: categoryID, Phase: phase}
	for _, def := range cat.Slice(categoryID, phase) {
		stats.Total++
		if src == nil || projectID == "" {
			continue
		}
		ov, ok := src.Overlay(projectID, def.ID)
		if !ok || !ov.Status.Completed() {
			continue
		}
		stats.Completed++
		if ov.Status == StatusDefect {
			stats.Defects++
		}
	}
	stats.Percentage = percentage(stats.Completed, stats.Total)
	return stats
}

// Stats rolls up every category of a phase for one project.
func Stats(cat *catalog.Catalog, src OverlaySource, projectID string, phase catalog.Phase) ProjectStats {
	summary := ProjectStats{ProjectID: projectID, Phase: phase}
	for _, c := range cat.Categories() {
		cs := CategoryStats(cat, src, projectID, c.ID, phase)
		summary.Total += cs.Total
		summary.Completed += cs.Completed
		summary.Defects += cs.Defects
		summary.Categories = append(summary.Categories, cs)
	}
	summary.Percentage = percentage(summary.Completed, summary.Total)
	return summary
}

func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
