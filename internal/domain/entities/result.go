package entities

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Result is the outcome of a single API call: either a raw JSON payload or a
// failure. Callers must treat a failed Result as "zero/absent data", never as
// something to abort on; the one fatal call is the initial connectivity probe.
type Result struct {
	Body []byte
	Err  error
}

// SuccessResult wraps a payload.
func SuccessResult(body []byte) Result {
	return Result{Body: body}
}

// FailureResult wraps a transport or HTTP-status failure.
func FailureResult(err error) Result {
	return Result{Err: err}
}

// Failed reports whether the call did not produce a payload.
func (it Result) Failed() bool {
	return it.Err != nil
}

// SafeCount extracts an integer at the given gjson path. It is total: a
// failed Result yields 0, as does a malformed body or a missing path. A
// leading dot on the path is tolerated.
func SafeCount(res Result, path string) int {
	value := safeGet(res, path)
	if !value.Exists() {
		return 0
	}
	return int(value.Int())
}

// SafeString extracts a string at the given path, empty on any failure.
func SafeString(res Result, path string) string {
	return safeGet(res, path).String()
}

// SafeStrings extracts a string array at the given path, dropping empty
// elements. Returns nil on any failure.
func SafeStrings(res Result, path string) []string {
	value := safeGet(res, path)
	if !value.Exists() {
		return nil
	}

	var out []string
	for _, item := range value.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func safeGet(res Result, path string) gjson.Result {
	if res.Failed() || !gjson.ValidBytes(res.Body) {
		return gjson.Result{}
	}
	return gjson.GetBytes(res.Body, strings.TrimPrefix(path, "."))
}
