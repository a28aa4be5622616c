package job

import (
	"sync"
	"time"

	"github.com/dtnitsch/site-cloner/models"
)

// memRecorder keeps job history in memory for tests.
type memRecorder struct {
	mu    sync.Mutex
	jobs  map[string]string
	pages map[string]map[int]string
}

func newMemRecorder() *memRecorder {
	return &memRecorder{
		jobs:  make(map[string]string),
		pages: make(map[string]map[int]string),
	}
}

func (m *memRecorder) InsertJob(jobID string, _ int, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[jobID] = models.JobStatusRunning
	m.pages[jobID] = make(map[int]string)
	return nil
}

func (m *memRecorder) InsertJobPage(jobID string, page models.PageResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[jobID][page.Position] = page.Status
	return nil
}

func (m *memRecorder) FinishJob(jobID string, _ models.JobOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[jobID] = models.JobStatusSucceeded
	return nil
}

func (m *memRecorder) FailJob(jobID string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[jobID] = models.JobStatusFailed
	return nil
}
