package review

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/review"
)

type lockInput struct {
	Action     string `json:"action"`
	JobID      string `json:"jobId"`
	EditorID   string `json:"editorId"`
	EditorName string `json:"editorName"`
}

type verifyInput struct {
	JobID            string                  `json:"jobId"`
	EditorID         string                  `json:"editorId"`
	EditedTranscript *persistence.Transcript `json:"editedTranscript"`
}

type queueHandler struct {
	data *ServiceData
}

func (h queueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.data.Locks.Queue(r.Context(), r.URL.Query().Get("editorId"))
	if err != nil {
		writeCoreError(w, err, "Can't get review queue")
		return
	}
	writeOK(w, http.StatusOK, tasks)
}

type getLocksHandler struct {
	data *ServiceData
}

func (h getLocksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if jobID := r.URL.Query().Get("jobId"); jobID != "" {
		l, err := h.data.Locks.Get(r.Context(), jobID)
		if err != nil {
			writeCoreError(w, err, "Can't get lock")
			return
		}
		if l == nil {
			writeJSON(w, http.StatusOK, &response{Success: true})
			return
		}
		writeOK(w, http.StatusOK, l)
		return
	}
	locks, err := h.data.Locks.List(r.Context())
	if err != nil {
		writeCoreError(w, err, "Can't get locks")
		return
	}
	writeOK(w, http.StatusOK, locks)
}

type lockHandler struct {
	data *ServiceData
}

func (h lockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in lockInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	if in.Action == "" || in.JobID == "" || in.EditorID == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	switch in.Action {
	case "acquire":
		h.acquire(w, r, &in)
	case "release":
		h.release(w, r, &in)
	case "refresh":
		h.refresh(w, r, &in)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h lockHandler) acquire(w http.ResponseWriter, r *http.Request, in *lockInput) {
	if in.EditorName == "" {
		writeError(w, http.StatusBadRequest, "Editor name required for acquiring lock")
		return
	}
	l, err := h.data.Locks.Acquire(r.Context(), in.JobID, in.EditorID, in.EditorName)
	h.count("acquire", err)
	if err != nil {
		writeCoreError(w, err, "Failed to acquire lock")
		return
	}
	h.jobChanged(r, in.JobID)
	writeOK(w, http.StatusOK, l)
}

func (h lockHandler) release(w http.ResponseWriter, r *http.Request, in *lockInput) {
	ok, err := h.data.Locks.Release(r.Context(), in.JobID, in.EditorID)
	if err == nil && !ok {
		err = errLost
	}
	h.count("release", err)
	if err == errLost {
		writeError(w, http.StatusBadRequest, "Could not release lock")
		return
	}
	if err != nil {
		writeCoreError(w, err, "Failed to release lock")
		return
	}
	h.jobChanged(r, in.JobID)
	writeOK(w, http.StatusOK, map[string]bool{"released": true})
}

func (h lockHandler) refresh(w http.ResponseWriter, r *http.Request, in *lockInput) {
	l, err := h.data.Locks.Refresh(r.Context(), in.JobID, in.EditorID)
	if err == nil && l == nil {
		err = errLost
	}
	h.count("refresh", err)
	if err == errLost {
		writeError(w, http.StatusBadRequest, "Could not refresh lock")
		return
	}
	if err != nil {
		writeCoreError(w, err, "Failed to refresh lock")
		return
	}
	writeOK(w, http.StatusOK, l)
}

var errLost = errors.New("no live lock")

func (h lockHandler) count(action string, err error) {
	h.data.metrics.CountLock(action, outcome(err))
}

func (h lockHandler) jobChanged(r *http.Request, jobID string) {
	if h.data.Listener == nil {
		return
	}
	if j, err := h.data.Jobs.Get(r.Context(), jobID); err == nil {
		h.data.changed(j)
	}
}

func outcome(err error) string {
	switch errors.Cause(err) {
	case nil:
		return "ok"
	case review.ErrLocked:
		return "denied"
	case review.ErrNotFound:
		return "not_found"
	case review.ErrNotReviewable:
		return "not_reviewable"
	case errLost:
		return "lost"
	}
	return "error"
}

type verifyHandler struct {
	data *ServiceData
}

func (h verifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in verifyInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	if in.JobID == "" || in.EditorID == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: jobId and editorId")
		return
	}
	job, err := h.data.Locks.Verify(r.Context(), in.JobID, in.EditorID, in.EditedTranscript)
	h.data.metrics.CountLock("verify", outcome(err))
	if err != nil {
		writeCoreError(w, err, "Failed to verify job")
		return
	}
	h.data.changed(job)
	writeOK(w, http.StatusOK, job)
}
