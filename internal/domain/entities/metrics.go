package entities

import (
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// normalizedDateLayout is the fixed-width UTC form all commit dates are
// reduced to. On this form lexicographic ordering equals chronological
// ordering, which the oldest-repository reduction relies on.
const normalizedDateLayout = "2006-01-02T15:04:05Z"

// LargestRepository returns the repository with the maximum reported size,
// treating absent sizes as zero. The reduction is stable: the first
// repository in merge order wins exact ties. It returns nil when the
// sequence is empty or no repository has size data at all.
func LargestRepository(repos []Repository) *Repository {
	var winner *Repository
	for i := range repos {
		if !repos[i].HasSize() {
			continue
		}
		if winner == nil || repos[i].Size() > winner.Size() {
			winner = &repos[i]
		}
	}
	return winner
}

// FilterLargeRepositories selects repositories whose reported size strictly
// exceeds thresholdBytes. Absent sizes never match. Merge order is
// preserved, and the filter is idempotent.
func FilterLargeRepositories(repos []Repository, thresholdBytes uint64) []Repository {
	var out []Repository
	for _, repo := range repos {
		if repo.HasSize() && repo.Size() > thresholdBytes {
			out = append(out, repo)
		}
	}
	return out
}

// RankByEarliestCommit sorts commit records ascending by normalized date,
// oldest first. The sort is stable and the input is assembled in merge
// order, so exact-date ties resolve to the first repository in merge order
// regardless of which worker finished first.
func RankByEarliestCommit(records []CommitRecord) []CommitRecord {
	ranked := make([]CommitRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Date != ranked[j].Date {
			return ranked[i].Date < ranked[j].Date
		}
		return ranked[i].MergeIndex < ranked[j].MergeIndex
	})
	return ranked
}

// OldestRepository returns the record with the chronologically earliest
// commit, or nil when no repository has commit data.
func OldestRepository(records []CommitRecord) *CommitRecord {
	ranked := RankByEarliestCommit(records)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// NormalizeCommitDate parses an RFC 3339 timestamp and reformats it to the
// fixed-width UTC layout. It reports false for timestamps that do not parse;
// such records are excluded from the oldest-repository reduction.
func NormalizeCommitDate(raw string) (string, bool) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", false
	}
	return parsed.UTC().Format(normalizedDateLayout), true
}

// SizeGiB converts bytes to GiB truncated (floored) to two decimals, never
// rounded up: 1,073,741,823 bytes reports as 0.99, not 1.00.
func SizeGiB(bytes uint64) float64 {
	return truncate2(float64(bytes) / float64(humanize.GiByte))
}

// SizeMB converts bytes to MiB truncated to two decimals.
func SizeMB(bytes uint64) float64 {
	return truncate2(float64(bytes) / float64(humanize.MiByte))
}

// GiBToBytes converts a GiB threshold from settings into bytes.
func GiBToBytes(gib float64) uint64 {
	return uint64(gib * float64(humanize.GiByte))
}

// MBToBytes converts an MB threshold from settings into bytes.
func MBToBytes(mb float64) uint64 {
	return uint64(mb * float64(humanize.MiByte))
}

func truncate2(v float64) float64 {
	return math.Floor(v*100) / 100 //nolint:mnd // two decimal places
}
