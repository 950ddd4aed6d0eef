package review

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/review"
	"github.com/airenas/listreview/internal/pkg/status"
	"github.com/airenas/listreview/internal/pkg/transcriber"
)

type transcribeInput struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	AudioURL           string `json:"audioUrl"`
	RequestHumanReview bool   `json:"requestHumanReview"`
}

type transcribeResult struct {
	JobID         string                  `json:"jobId"`
	ExternalJobID string                  `json:"externalJobId,omitempty"`
	Status        string                  `json:"status"`
	Message       string                  `json:"message,omitempty"`
	Transcript    *persistence.Transcript `json:"transcript,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

type submitHandler struct {
	data *ServiceData
}

func (h submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in transcribeInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	if in.UserID == "" || in.AudioURL == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: audioUrl and userId")
		return
	}
	if !validEmail(in.Email) {
		writeError(w, http.StatusBadRequest, "Wrong email")
		return
	}
	if h.data.Transcriber == nil {
		writeError(w, http.StatusInternalServerError, "Transcriber not configured")
		return
	}
	ctx := r.Context()
	job, err := h.data.Jobs.Create(ctx, review.NewJob{OwnerID: in.UserID, OwnerEmail: in.Email, AudioURL: in.AudioURL,
		RequestHumanReview: in.RequestHumanReview})
	if err != nil {
		writeCoreError(w, err, "Failed to create job")
		return
	}
	resp, err := h.data.Transcriber.Submit(ctx, in.AudioURL)
	if err != nil {
		cmdapp.Log.Error(err)
		j, ferr := h.data.Jobs.Fail(ctx, job.ID, err.Error())
		cmdapp.LogIf(ferr)
		h.data.changed(j)
		writeError(w, http.StatusInternalServerError, "Failed to submit to transcriber: "+err.Error())
		return
	}
	job, err = h.data.Jobs.StartProcessing(ctx, job.ID, resp.JobID)
	if err != nil {
		writeCoreError(w, err, "Failed to update job")
		return
	}
	h.data.changed(job)
	writeOK(w, http.StatusOK, &transcribeResult{JobID: job.ID, ExternalJobID: resp.JobID, Status: string(job.Status),
		Message: resp.Message})
}

type syncHandler struct {
	data *ServiceData
}

// ServeHTTP polls the backend for a processing job and applies the outcome
func (h syncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	job, err := h.data.Jobs.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeCoreError(w, err, "Can't get job")
		return
	}
	res := &transcribeResult{JobID: job.ID, ExternalJobID: job.ExternalID, Status: string(job.Status),
		Transcript: job.Transcript, Error: job.Error}
	if job.Status != status.Processing || job.ExternalID == "" {
		writeOK(w, http.StatusOK, res)
		return
	}
	if h.data.Transcriber == nil {
		writeError(w, http.StatusInternalServerError, "Transcriber not configured")
		return
	}
	st, err := h.data.Transcriber.Status(ctx, job.ExternalID)
	if err != nil {
		cmdapp.Log.Error(err)
		res.Error = "Failed to check transcription status"
		writeOK(w, http.StatusOK, res)
		return
	}
	switch st.Status {
	case transcriber.StatusCompleted:
		url := st.TranscriptURL()
		if url == "" {
			res.Status = st.Status
			break
		}
		tr, err := h.data.Transcriber.Transcript(ctx, url)
		if err != nil {
			cmdapp.Log.Error(err)
			res.Error = "Failed to get transcript"
			break
		}
		tr.Status = "COMPLETED"
		job, err = h.data.Jobs.Complete(ctx, job.ID, tr)
		if err != nil {
			writeCoreError(w, err, "Failed to complete job")
			return
		}
		h.data.changed(job)
		res.Status, res.Transcript = string(job.Status), job.Transcript
	case transcriber.StatusFailed:
		job, err = h.data.Jobs.Fail(ctx, job.ID, st.ErrorMsg())
		if err != nil {
			writeCoreError(w, err, "Failed to update job")
			return
		}
		h.data.changed(job)
		res.Status, res.Error = string(job.Status), job.Error
	default:
		res.Status = st.Status
	}
	writeOK(w, http.StatusOK, res)
}
