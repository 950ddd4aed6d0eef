package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
)

const defaultLanguage = "am"

//Client comunicates with the transcription backend
type Client struct {
	httpclient *http.Client
	url        string
	key        string
	language   string
	bp         func() backoff.BackOff
}

//NewClient creates a transcriber client from transcriber.* config
func NewClient() (*Client, error) {
	res := Client{}
	var err error
	res.url, err = configURL("transcriber.url")
	if err != nil {
		return nil, err
	}
	res.key = cmdapp.Config.GetString("transcriber.key")
	res.language = cmdapp.Config.GetString("transcriber.language")
	if res.language == "" {
		res.language = defaultLanguage
	}
	res.httpclient = &http.Client{Timeout: 30 * time.Second}
	res.bp = newBackoff
	return &res, nil
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = time.Minute
	return backoff.WithMaxRetries(b, 3)
}

type submitRequest struct {
	AudioURLs []string `json:"audio_urls"`
	Language  string   `json:"language,omitempty"`
}

//Submit sends the audio for transcription, returns the backend's job
func (c *Client) Submit(ctx context.Context, audioURL string) (*JobResponse, error) {
	cmdapp.Log.Infof("Submit %s", audioURL)
	b, err := json.Marshal(submitRequest{AudioURLs: []string{audioURL}, Language: c.language})
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal request")
	}
	var res JobResponse
	err = c.invoke(ctx, http.MethodPost, urlJoin(c.url, "transcribe"), b, true, &res)
	if err != nil {
		return nil, errors.Wrap(err, "Can't submit audio")
	}
	if res.JobID == "" {
		return nil, errors.New("No job_id in response")
	}
	return &res, nil
}

//Status gets the backend's job status
func (c *Client) Status(ctx context.Context, externalID string) (*JobStatus, error) {
	var res JobStatus
	err := c.invoke(ctx, http.MethodGet, urlJoin(c.url, "transcribe", externalID), nil, true, &res)
	if err != nil {
		return nil, errors.Wrap(err, "Can't get status")
	}
	return &res, nil
}

//Transcript downloads the transcript from the result URL
func (c *Client) Transcript(ctx context.Context, url string) (*persistence.Transcript, error) {
	var res transcriptResult
	err := c.invoke(ctx, http.MethodGet, url, nil, false, &res)
	if err != nil {
		return nil, errors.Wrap(err, "Can't get transcript")
	}
	return res.toTranscript(), nil
}

func (c *Client) invoke(ctx context.Context, method, url string, body []byte, auth bool, res interface{}) error {
	op := func() error {
		var rd *bytes.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		} else {
			rd = bytes.NewReader([]byte{})
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if auth && c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		cmdapp.Log.Debugf("Call %s %s", method, urlToLog(url))
		resp, err := c.httpclient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := checkResponse(resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
			return backoff.Permanent(errors.Wrap(err, "Can't decode response"))
		}
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(c.bp(), ctx))
	if pe, ok := err.(*backoff.PermanentError); ok {
		return pe.Err
	}
	return err
}
