package review

import (
	"strings"

	"github.com/airenas/listreview/internal/pkg/persistence"
)

// mergeTranscript builds the edited transcript by segment position: the segment at i comes from edited
// if edited has one there, otherwise from the original. Extra edited segments are appended.
func mergeTranscript(orig, edited *persistence.Transcript, jobID string) *persistence.Transcript {
	if orig == nil {
		res := edited.Copy()
		res.JobID = jobID
		res.Text = joinText(res.Segments)
		return res
	}
	res := orig.Copy()
	res.JobID = jobID
	if edited.Language != "" {
		res.Language = edited.Language
	}
	if len(edited.Segments) == 0 {
		if edited.Text != "" {
			res.Text = edited.Text
		}
		return res
	}
	for i, s := range edited.Segments {
		if i < len(res.Segments) {
			res.Segments[i] = s
		} else {
			res.Segments = append(res.Segments, s)
		}
	}
	res.Text = joinText(res.Segments)
	return res
}

func joinText(segments []persistence.Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}
