package review

import (
	"net/http"

	"github.com/badoux/checkmail"
	"github.com/gorilla/mux"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/review"
	"github.com/airenas/listreview/internal/pkg/status"
)

type jobInput struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	AudioURL           string `json:"audioUrl"`
	AudioFileName      string `json:"audioFileName"`
	RequestHumanReview bool   `json:"requestHumanReview"`
}

type jobPatch struct {
	Status             *string                 `json:"status"`
	AudioFileName      *string                 `json:"audioFileName"`
	ExternalJobID      *string                 `json:"externalJobId"`
	Error              *string                 `json:"error"`
	RequestHumanReview *bool                   `json:"requestHumanReview"`
	Transcript         *persistence.Transcript `json:"transcript"`
}

func (d *ServiceData) changed(j *persistence.Job) {
	if d.Listener != nil && j != nil {
		d.Listener.JobChanged(j)
	}
}

func (d *ServiceData) deleted(j *persistence.Job) {
	if d.Listener != nil && j != nil {
		d.Listener.JobDeleted(j)
	}
}

type listJobsHandler struct {
	data *ServiceData
}

func (h listJobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f := review.Filter{OwnerID: r.URL.Query().Get("userId")}
	if st := r.URL.Query().Get("status"); st != "" {
		var ok bool
		if f.Status, ok = status.From(st); !ok {
			writeError(w, http.StatusBadRequest, "Wrong status "+st)
			return
		}
	}
	jobs, err := h.data.Jobs.List(r.Context(), f)
	if err != nil {
		writeCoreError(w, err, "Can't get jobs")
		return
	}
	writeOK(w, http.StatusOK, jobs)
}

type createJobHandler struct {
	data *ServiceData
}

func (h createJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	if in.UserID == "" || in.AudioURL == "" || in.AudioFileName == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validEmail(in.Email) {
		writeError(w, http.StatusBadRequest, "Wrong email")
		return
	}
	job, err := h.data.Jobs.Create(r.Context(), review.NewJob{OwnerID: in.UserID, OwnerEmail: in.Email,
		AudioURL: in.AudioURL, AudioFileName: in.AudioFileName, RequestHumanReview: in.RequestHumanReview})
	if err != nil {
		writeCoreError(w, err, "Failed to create job")
		return
	}
	h.data.changed(job)
	writeOK(w, http.StatusCreated, job)
}

type getJobHandler struct {
	data *ServiceData
}

func (h getJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	job, err := h.data.Jobs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeCoreError(w, err, "Can't get job")
		return
	}
	writeOK(w, http.StatusOK, job)
}

type updateJobHandler struct {
	data *ServiceData
}

func (h updateJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in jobPatch
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	upd := review.JobUpdate{AudioFileName: in.AudioFileName, ExternalID: in.ExternalJobID, Error: in.Error,
		RequestHumanReview: in.RequestHumanReview, Transcript: in.Transcript}
	if in.Status != nil {
		st, ok := status.From(*in.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "Wrong status "+*in.Status)
			return
		}
		upd.Status = &st
	}
	job, err := h.data.Jobs.Update(r.Context(), mux.Vars(r)["id"], upd)
	if err != nil {
		writeCoreError(w, err, "Failed to update job")
		return
	}
	h.data.changed(job)
	writeOK(w, http.StatusOK, job)
}

type deleteJobHandler struct {
	data *ServiceData
}

func (h deleteJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var job *persistence.Job
	if h.data.Listener != nil {
		job, _ = h.data.Jobs.Get(r.Context(), id)
	}
	ok, err := h.data.Jobs.Delete(r.Context(), id)
	if err != nil {
		writeCoreError(w, err, "Failed to delete job")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	h.data.deleted(job)
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

type requestReviewHandler struct {
	data *ServiceData
}

func (h requestReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	job, err := h.data.Jobs.RequestReview(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeCoreError(w, err, "Failed to request review")
		return
	}
	h.data.changed(job)
	writeOK(w, http.StatusOK, job)
}

func validEmail(email string) bool {
	if email == "" {
		return true
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		cmdapp.Log.Warnf("Wrong email '%s'", email)
		return false
	}
	return true
}
