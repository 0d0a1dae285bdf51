package reqhandler

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
)

// responseData is a simplified copy of the response details.
type responseData struct {
	StatusCode int
	Headers    map[string][]string
	Body       string
}

// requestDumpData holds a dump of request/response info for panic logging.
type requestDumpData struct {
	StatusCode int `json:"status_code"`
	Request    struct {
		URL     string              `json:"url"`
		Params  string              `json:"params"`
		Headers map[string][]string `json:"headers"`
		Body    string              `json:"body"`
	} `json:"request"`
	Response struct {
		Headers map[string][]string `json:"headers"`
		Body    string              `json:"body"`
	} `json:"response"`
}

// panicData holds the data that will be logged when a panic occurs.
type panicData struct {
	Err         any             `json:"err"`
	RequestDump requestDumpData `json:"request_dump"`
	StackTrace  []string        `json:"stack_trace"`
}

// handlePanic logs the details of a recovered panic, including a stack
// trace, and sends an HTTP 500 response unless the response has already
// been started.
func handlePanic(
	rw *ResWrap,
	r *http.Request,
	reqWrap *ReqWrap,
	err any,
	panicHandlerLoggerFn func(r *http.Request) func(messages ...any),
	maxDumpPartSize int,
) {
	rd := responseData{
		StatusCode: rw.StatusCode,
		Headers:    limitHeaders(rw.Header(), maxDumpPartSize),
		Body:       limitString(string(rw.Body), maxDumpPartSize),
	}

	var reqBody string
	if reqWrap != nil {
		reqBody = limitString(string(reqWrap.BodyContent), maxDumpPartSize)
	}

	stack := string(debug.Stack())
	pd := panicData{
		Err:         fmt.Sprintf("%v", err),
		RequestDump: *createRequestDumpData(rd, r, reqBody, maxDumpPartSize),
		StackTrace:  strings.Split(stack, "\n"),
	}
	panicHandlerLoggerFn(r)("Panic", pd)

	if rw.HeaderWritten() {
		return
	}
	http.Error(
		rw,
		http.StatusText(http.StatusInternalServerError),
		http.StatusInternalServerError,
	)
}

// createRequestDumpData constructs a dump of the request and response.
func createRequestDumpData(
	rd responseData,
	r *http.Request,
	reqBody string,
	maxDumpPartSize int,
) *requestDumpData {
	dump := &requestDumpData{StatusCode: rd.StatusCode}
	dump.Request.URL = r.URL.String()
	dump.Request.Params = limitString(r.URL.RawQuery, maxDumpPartSize)
	dump.Request.Headers = limitHeaders(r.Header, maxDumpPartSize)
	dump.Request.Body = reqBody
	dump.Response.Headers = rd.Headers
	dump.Response.Body = rd.Body
	return dump
}

// limitHeaders truncates header values longer than maxSize.
func limitHeaders(
	headers map[string][]string, maxSize int,
) map[string][]string {
	limited := make(map[string][]string, len(headers))
	for key, values := range headers {
		limitedVals := make([]string, 0, len(values))
		for _, val := range values {
			limitedVals = append(limitedVals, limitString(val, maxSize))
		}
		limited[key] = limitedVals
	}
	return limited
}

// limitString truncates s if it exceeds maxSize.
func limitString(s string, maxSize int) string {
	if len(s) > maxSize {
		return s[:maxSize] + "... (truncated)"
	}
	return s
}
