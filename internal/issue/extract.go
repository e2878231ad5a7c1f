package issue

import (
	"encoding/json"
	"strings"
	"time"
)

// DataMessage is the message type of log subscription records carrying log
// events. Other types, such as control messages, carry nothing to extract.
const DataMessage = "DATA_MESSAGE"

const (
	nodeInvokeError       = "\tERROR\tInvoke Error"
	nodeUncaughtException = "\tERROR\tUncaught Exception"
	timeoutPrefix         = "Task timed out after"
	errorPrefix           = "[ERROR]"

	timeoutErrorType = "TimeoutError"
	defaultErrorType = "Error"
)

type (
	// LogsData is a log subscription message.
	LogsData struct {
		MessageType         string     `json:"messageType"`
		Owner               string     `json:"owner"`
		LogGroup            string     `json:"logGroup"`
		LogStream           string     `json:"logStream"`
		SubscriptionFilters []string   `json:"subscriptionFilters"`
		LogEvents           []LogEvent `json:"logEvents"`
	}

	LogEvent struct {
		ID string `json:"id"`
		// Timestamp in milliseconds since the epoch.
		Timestamp int64  `json:"timestamp"`
		Message   string `json:"message"`
	}

	// occurrence is an error found in a single log event.
	occurrence struct {
		Error   string
		Message string
		Time    time.Time
	}

	nodeError struct {
		ErrorType    string `json:"errorType"`
		ErrorMessage string `json:"errorMessage"`
	}
)

// parseEvent looks for an error in a log event, returning false if there is
// none.
func parseEvent(event LogEvent) (occurrence, bool) {
	occ := occurrence{Time: time.UnixMilli(event.Timestamp).UTC()}
	msg := event.Message
	switch {
	case strings.Contains(msg, nodeInvokeError) || strings.Contains(msg, nodeUncaughtException):
		start := strings.Index(msg, "{")
		if start < 0 {
			return occurrence{}, false
		}
		var ne nodeError
		if err := json.Unmarshal([]byte(msg[start:]), &ne); err != nil {
			return occurrence{}, false
		}
		occ.Error = ne.ErrorType
		occ.Message = ne.ErrorMessage
		if occ.Error == "" {
			occ.Error = defaultErrorType
		}
	case strings.Contains(msg, timeoutPrefix):
		occ.Error = timeoutErrorType
		occ.Message = strings.TrimSpace(msg[strings.Index(msg, timeoutPrefix):])
	case strings.Contains(msg, errorPrefix):
		occ.Error, occ.Message = parseErrorLine(msg[strings.Index(msg, errorPrefix)+len(errorPrefix):])
	default:
		return occurrence{}, false
	}
	if occ.Message == "" {
		return occurrence{}, false
	}
	return occ, true
}

// parseErrorLine parses the remainder of an [ERROR] line, which is either
// tab separated fields ending in the error text, or the text alone. Error
// text of the form "Type: message" is split into the two.
func parseErrorLine(s string) (string, string) {
	first, rest, _ := strings.Cut(s, "\n")
	fields := strings.Split(first, "\t")
	var text string
	for i := len(fields) - 1; i >= 0; i-- {
		if text = strings.TrimSpace(fields[i]); text != "" {
			break
		}
	}
	errType := defaultErrorType
	if typ, msg, ok := strings.Cut(text, ": "); ok && !strings.ContainsAny(typ, " \t") {
		errType, text = typ, msg
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		text += "\n" + rest
	}
	return errType, text
}
