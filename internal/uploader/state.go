package uploader

import (
	"context"
	"sync"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
)

// Status is one task's lifecycle position. Transitions move forward only,
// except error -> uploading via an explicit per-task retry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// File is one selected file, held in memory the way a browser holds a blob.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Task is the externally visible state of one file's upload.
type Task struct {
	Index    int
	FileName string
	Size     int64
	MimeType string
	Status   Status
	Progress int // 0-100, non-decreasing while uploading
	Error    string
	Result   *media.Item
}

// Batch owns the task list for one submission. Tasks are addressed by index
// (stable identity); completion order never reorders the list. All mutation
// goes through Batch methods under the lock, so one task's update can never
// clobber a sibling's.
type Batch struct {
	mu        sync.Mutex
	files     []File
	tasks     []Task
	cancels   []context.CancelFunc
	cancelled bool
	onChange  func([]Task)
}

func newBatch(files []File, onChange func([]Task)) *Batch {
	b := &Batch{
		files:    files,
		tasks:    make([]Task, len(files)),
		cancels:  make([]context.CancelFunc, len(files)),
		onChange: onChange,
	}
	for i, f := range files {
		b.tasks[i] = Task{
			Index:    i,
			FileName: f.Name,
			Size:     int64(len(f.Data)),
			MimeType: f.MimeType,
			Status:   StatusPending,
		}
	}
	return b
}

// Snapshot returns a copy of every task's current state.
func (b *Batch) Snapshot() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Task returns a copy of one task.
func (b *Batch) Task(i int) Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks[i]
}

// Len returns the number of tasks in the batch.
func (b *Batch) Len() int {
	return len(b.tasks)
}

// Cancel signals abort to every task. Pending tasks never start, in-flight
// transfers observe their context and stop, settled tasks are unaffected.
func (b *Batch) Cancel() {
	b.mu.Lock()
	b.cancelled = true
	cancels := make([]context.CancelFunc, len(b.cancels))
	copy(cancels, b.cancels)
	b.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

func (b *Batch) isCancelled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelled
}

func (b *Batch) registerCancel(i int, cancel context.CancelFunc) {
	b.mu.Lock()
	b.cancels[i] = cancel
	b.mu.Unlock()
}

func (b *Batch) file(i int) File {
	return b.files[i]
}

func (b *Batch) setStatus(i int, status Status) {
	b.mu.Lock()
	b.tasks[i].Status = status
	b.notifyLocked()
}

// setProgress clamps to 0-100 and never moves backwards while a task is
// uploading.
func (b *Batch) setProgress(i int, pct int) {
	b.mu.Lock()
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > b.tasks[i].Progress {
		b.tasks[i].Progress = pct
	}
	b.notifyLocked()
}

func (b *Batch) succeed(i int, item media.Item) {
	b.mu.Lock()
	b.tasks[i].Status = StatusSuccess
	b.tasks[i].Progress = 100
	b.tasks[i].Error = ""
	b.tasks[i].Result = &item
	b.notifyLocked()
}

// failAll settles every unsettled task with the same error. Used when the
// server rejects the batch up front, before any task is admitted to the pool.
func (b *Batch) failAll(err error) {
	b.mu.Lock()
	for i := range b.tasks {
		if b.tasks[i].Status == StatusPending || b.tasks[i].Status == StatusUploading {
			b.tasks[i].Status = StatusError
			b.tasks[i].Error = err.Error()
		}
	}
	b.notifyLocked()
}

func (b *Batch) fail(i int, err error) {
	b.mu.Lock()
	b.tasks[i].Status = StatusError
	b.tasks[i].Error = err.Error()
	b.notifyLocked()
}

// resetForRetry moves an errored task back to pending with cleared progress
// and error. Only valid from the error state.
func (b *Batch) resetForRetry(i int) bool {
	b.mu.Lock()
	if b.tasks[i].Status != StatusError {
		b.mu.Unlock()
		return false
	}
	b.tasks[i].Status = StatusPending
	b.tasks[i].Progress = 0
	b.tasks[i].Error = ""
	b.tasks[i].Result = nil
	b.notifyLocked()
	return true
}

// notifyLocked publishes a snapshot to the observer. Called with b.mu held;
// unlocks before invoking the callback so observers may call back into the
// batch.
func (b *Batch) notifyLocked() {
	var snapshot []Task
	if b.onChange != nil {
		snapshot = make([]Task, len(b.tasks))
		copy(snapshot, b.tasks)
	}
	b.mu.Unlock()
	if b.onChange != nil {
		b.onChange(snapshot)
	}
}
