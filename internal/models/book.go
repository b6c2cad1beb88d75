// Package models holds the data types shared across the verification
// pipeline.
package models

// BookRecord is one row of an input workbook.
type BookRecord struct {
	School    string `json:"school"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
}

// ResolvedISBN is the outcome of resolving a (title, author) pair against
// the book-search API. Exactly one of ISBN13 and ErrorReason is set.
type ResolvedISBN struct {
	ISBN13 string `json:"isbn13"`
	// ErrorReason explains a failed resolution ("no results", "below
	// threshold (0.43)", ...). Empty on success.
	ErrorReason string `json:"error_reason,omitempty"`
	// CandidateCount is how many search candidates scored at or above the
	// similarity threshold.
	CandidateCount int `json:"candidate_count"`
}

// HoldingResult is the outcome of checking whether a school holds an ISBN.
type HoldingResult struct {
	Exists bool `json:"exists"`
	// HolderCount is the total holdings reported across all searched
	// partitions, regardless of school match.
	HolderCount int `json:"holder_count"`
	// MatchedSchoolName is the display name of the first matching holder.
	MatchedSchoolName string `json:"matched_school_name,omitempty"`
	// MatchedSchoolNames lists every holder whose name matched, in catalog
	// order, duplicates included.
	MatchedSchoolNames []string `json:"matched_school_names,omitempty"`
	// ErrorReason is set when the check itself failed.
	ErrorReason string `json:"error_reason,omitempty"`
}

// VerificationOutcome is one row of a result workbook.
type VerificationOutcome struct {
	Record        BookRecord `json:"record"`
	ISBN13        string     `json:"isbn13"`
	MatchedSchool string     `json:"matched_school"`
	ExistsMark    string     `json:"exists_mark"`
	Reason        string     `json:"reason,omitempty"`
}

// Marks written to the 존재여부 column.
const (
	ExistsMarkFound    = "✅"
	ExistsMarkNotFound = "❌"
)
