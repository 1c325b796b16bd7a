//go:build unit

package reporters_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/infrastructure/reporters"
)

func TestMarkdownReporter(t *testing.T) {
	t.Parallel()

	t.Run("should render a markdown document", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer

		// when
		err := reporters.NewMarkdownReporter().Write(&out, fullReport())

		// then
		require.NoError(t, err)
		rendered := out.String()
		assert.Contains(t, rendered, `# Scan report for "contoso"`)
		assert.Contains(t, rendered, "## Summary")
		assert.Contains(t, rendered, "| Metric | Value |")
		assert.Contains(t, rendered, "Skipped projects: Broken")
		assert.Contains(t, rendered, "## Large repositories")
		assert.Contains(t, rendered, "| P1 | A | 2.00 |")
	})

	t.Run("should mark an empty large section", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		report := &entities.Report{
			Organization: "contoso",
			GeneratedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		}

		// when
		err := reporters.NewMarkdownReporter().Write(&out, report)

		// then
		require.NoError(t, err)
		assert.Contains(t, out.String(), "None above the threshold.")
	})

	t.Run("should quote the incomplete marker", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		report := fullReport()
		report.Incomplete = true
		report.IncompleteReason = "scan interrupted before completion: context canceled"

		// when
		err := reporters.NewMarkdownReporter().Write(&out, report)

		// then
		require.NoError(t, err)
		assert.Contains(t, out.String(), "> **Incomplete report:** scan interrupted")
	})

	t.Run("should include the deep scan section when present", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		report := fullReport()
		report.DeepScan = &entities.DeepScanReport{
			ThresholdMB:     50,
			TotalLargeFiles: 1,
			Blobs: []entities.LargeBlobRecord{
				{Project: "P1", Repo: "A", Path: "assets/video.mp4", SizeBytes: 125829120, SizeMB: 120},
			},
		}

		// when
		err := reporters.NewMarkdownReporter().Write(&out, report)

		// then
		require.NoError(t, err)
		rendered := out.String()
		assert.Contains(t, rendered, "## Deep scan")
		assert.Contains(t, rendered, "1 files at or above 50.00 MB")
		assert.Contains(t, rendered, "assets/video.mp4")
	})
}
