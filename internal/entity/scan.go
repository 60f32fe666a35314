package entity

const (
	ScanStatusDirMissing ScanStatus = iota
	ScanStatusNoMatches
	ScanStatusFound
)

type ScanStatus int

func (s ScanStatus) String() string {
	return [...]string{"DirMissing", "NoMatches", "Found"}[s]
}

// Scan is the result of walking one category directory. Items is only set
// when Status is ScanStatusFound.
type Scan struct {
	Category string
	Status   ScanStatus
	Items    []MediaItem
}

// Available is false both for a missing directory and for a directory
// without matching files.
func (s *Scan) Available() bool {
	return s != nil && s.Status == ScanStatusFound
}

// Count returns 0 for an unavailable scan.
func (s *Scan) Count() int {
	if !s.Available() {
		return 0
	}

	return len(s.Items)
}

const (
	IndexActionWritten IndexAction = iota
	IndexActionPreserved
	IndexActionSkipped
)

type IndexAction int

func (a IndexAction) String() string {
	return [...]string{"written", "preserved", "skipped"}[a]
}

// IndexResult is what happened to one category index during a run.
type IndexResult struct {
	Category      string
	Action        IndexAction
	ScanStatus    ScanStatus
	ScannedCount  int
	ExistingCount int
	Published     bool
	FilePath      string
}

// StoredIndex is an index file left by a previous run, parsed without any
// schema check. Size follows the JSON value: elements of an array, keys of an
// object, characters of a string and 0 for anything else.
type StoredIndex struct {
	Content any
	Size    int
}
