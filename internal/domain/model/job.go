package model

// Job is one reference/system RTTM pair queued for batch scoring.
type Job struct {
	FileID  string // basename without the .rttm extension
	RefPath string
	SysPath string
}
