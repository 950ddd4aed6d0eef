package transcriber

import "github.com/airenas/listreview/internal/pkg/persistence"

//Backend job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

//JobResponse is the backend's answer to a submission
type JobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

//FileResult is the backend's result for one audio file
type FileResult struct {
	OriginalURL    string  `json:"original_url"`
	Status         string  `json:"status"`
	TranscriptURL  string  `json:"transcript_url"`
	Error          *string `json:"error"`
	ProcessingTime float64 `json:"processing_time"`
	Duration       float64 `json:"duration"`
	NumSegments    int     `json:"num_segments"`
}

//JobStatus is the backend's job state
type JobStatus struct {
	JobID          string       `json:"job_id"`
	Status         string       `json:"status"`
	TranscriptURLs []string     `json:"transcript_urls"`
	Results        []FileResult `json:"results"`
	Error          *string      `json:"error"`
	SubmittedAt    string       `json:"submitted_at"`
	CompletedAt    *string      `json:"completed_at"`
}

//TranscriptURL returns the first available transcript URL
func (s *JobStatus) TranscriptURL() string {
	for _, r := range s.Results {
		if r.TranscriptURL != "" {
			return r.TranscriptURL
		}
	}
	for _, u := range s.TranscriptURLs {
		if u != "" {
			return u
		}
	}
	return ""
}

//ErrorMsg returns the backend's error or a default text
func (s *JobStatus) ErrorMsg() string {
	if s.Error != nil && *s.Error != "" {
		return *s.Error
	}
	for _, r := range s.Results {
		if r.Error != nil && *r.Error != "" {
			return *r.Error
		}
	}
	return "Transcription failed"
}

type segment struct {
	ID        int    `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Type      string `json:"type"`
	Text      string `json:"text"`
}

type transcriptResult struct {
	JobID    string    `json:"job_id"`
	Status   string    `json:"status"`
	Duration float64   `json:"duration"`
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Segments []segment `json:"segments"`
}

func (r *transcriptResult) toTranscript() *persistence.Transcript {
	res := &persistence.Transcript{JobID: r.JobID, Status: r.Status, Duration: r.Duration, Language: r.Language,
		Text: r.Text}
	for _, s := range r.Segments {
		res.Segments = append(res.Segments, persistence.Segment{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime,
			Type: s.Type, Text: s.Text})
	}
	return res
}
