package transcriber

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
)

//ErrRejected indicates the backend refused the call, retrying won't help
var ErrRejected = errors.New("Call rejected by transcriber")

func urlJoin(base string, parts ...string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return strings.Join(append([]string{base}, parts...), "/")
	}
	u.Path = path.Join(u.Path, path.Join(parts...))
	return u.String()
}

func configURL(name string) (string, error) {
	s := cmdapp.Config.GetString(name)
	if s == "" {
		return "", errors.New("No " + name + " setting provided")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", errors.Wrap(err, "Can't parse url "+s)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("Wrong %s: %s", name, s)
	}
	return u.String(), nil
}

// checkResponse returns nil for 2xx codes.
// Client errors except 408 and 429 are permanent, others are left for a retry.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	trimS := ""
	if len(bodyBytes) > 100 {
		bodyBytes = bodyBytes[:100]
		trimS = "..."
	}
	msg := fmt.Sprintf("Wrong response code from server. Code: %d\n%s", resp.StatusCode, string(bodyBytes)+trimS)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(errors.Wrap(ErrRejected, msg))
	}
	return errors.New(msg)
}

// urlToLog hides the password of the URL
func urlToLog(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxx")
	}
	return u.String()
}
