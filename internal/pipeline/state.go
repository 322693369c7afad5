package pipeline

import (
	"sync"
	"time"

	"salesreport/internal/dataprocessing"
)

// Stage names, in run order
const (
	StageOutputDir  = "output_dir"
	StageLoad       = "load"
	StageClean      = "clean"
	StageEnrich     = "enrich"
	StageProfile    = "profile"
	StagePlan       = "plan"
	StageReports    = "reports"
	StageSummaries  = "summaries"
	StageSupervisor = "supervisor_summary"
	StageExport     = "export"
)

// StageStatus represents the outcome of a stage or report
type StageStatus string

const (
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// StageState records one finished stage
type StageState struct {
	Name     string
	Status   StageStatus
	Duration time.Duration
	Error    error
}

// Result describes a run. It is returned even when the run fails, holding
// everything that completed before the failure.
type Result struct {
	RunID   string
	Stages  []StageState
	Plan    *dataprocessing.Plan
	Clean   dataprocessing.CleanStats
	Enrich  dataprocessing.EnrichStats
	Profile dataprocessing.Profile
	// Reports maps report name to its outcome
	Reports map[string]StageStatus

	mu    sync.Mutex
	files []string
}

func newResult(runID string) *Result {
	return &Result{RunID: runID, Reports: make(map[string]StageStatus)}
}

// Files returns the output files written, in completion order
func (r *Result) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}

// Stage returns the state of the named stage
func (r *Result) Stage(name string) (StageState, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageState{}, false
}

func (r *Result) addFile(path string) {
	r.mu.Lock()
	r.files = append(r.files, path)
	r.mu.Unlock()
}

func (r *Result) setReport(name string, status StageStatus) {
	r.mu.Lock()
	r.Reports[name] = status
	r.mu.Unlock()
}
