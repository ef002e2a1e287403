package domain

// Mode selects what a mirror run writes for each source file.
type Mode int

const (
	ModeCopy Mode = iota
	ModeInfo
)

func (m Mode) String() string {
	if m == ModeInfo {
		return "info"
	}
	return "copy"
}

type MirrorItem struct {
	SourcePath   string
	RelativePath string
	TargetPath   string
	Size         int64
}

type MirrorPlan struct {
	Mode       Mode
	SourceDir  string
	TargetDir  string
	Items      []MirrorItem
	Skipped    int
	Overwrites int
	TotalBytes int64
}

type FileFailure struct {
	Path string
	Err  error
}

type MirrorResult struct {
	Processed    int
	BytesWritten int64
	Failures     []FileFailure
	Warnings     []string
}
