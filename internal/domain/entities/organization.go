package entities

// Project is a named grouping of repositories and related work-tracking
// configuration inside an organization. Projects are materialized once per
// scan and never mutated.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Repository is one version-controlled source tree discovered during
// collection. SizeBytes is API-reported and may be absent; absent sizes are
// treated as zero by threshold comparisons but excluded from "has size data"
// checks. MergeIndex is the position in the merged sequence and serves as
// the stable tie-break key for every deterministic reduction.
type Repository struct {
	Project       string  `json:"project"`
	Name          string  `json:"name"`
	ID            string  `json:"id"`
	SizeBytes     *uint64 `json:"sizeBytes,omitempty"`
	DefaultBranch string  `json:"defaultBranch,omitempty"`
	RemoteURL     string  `json:"remoteUrl,omitempty"`
	MergeIndex    int     `json:"-"`
}

// HasSize reports whether the API returned a size for this repository.
func (it Repository) HasSize() bool {
	return it.SizeBytes != nil
}

// Size returns the reported size in bytes, absent treated as zero.
func (it Repository) Size() uint64 {
	if it.SizeBytes == nil {
		return 0
	}
	return *it.SizeBytes
}

// CommitRecord is the earliest commit of a repository. Date is normalized to
// the fixed-width UTC form "2006-01-02T15:04:05Z" so that lexicographic
// comparison equals chronological comparison. A repository without history
// has no CommitRecord at all.
type CommitRecord struct {
	Project    string `json:"project"`
	Repo       string `json:"repository"`
	RepoID     string `json:"repositoryId,omitempty"`
	Date       string `json:"date"`
	CommitID   string `json:"commitId"`
	MergeIndex int    `json:"-"`
}

// LargeBlobRecord is one oversized historical object found by the deep scan.
// A repository may contribute zero or many records.
type LargeBlobRecord struct {
	Project   string  `json:"project"`
	Repo      string  `json:"repository"`
	Path      string  `json:"path"`
	SizeBytes uint64  `json:"sizeBytes"`
	SizeMB    float64 `json:"sizeMB"`
}

// UserRecord is one entry of the organization's user entitlement listing.
type UserRecord struct {
	DisplayName   string `json:"displayName"`
	PrincipalName string `json:"principalName"`
	License       string `json:"license,omitempty"`
}
