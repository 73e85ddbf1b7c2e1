package core

// error_messages.go maps batch-level technical errors to user-friendly
// messages with codes for support reference. Per-record failures never pass
// through here — they are data on the Result. This mapping only covers the
// errors that fail a whole call.
//
// Error codes are grouped by category:
//
//	REQ001 - Empty batch: no records were provided
//	REQ002 - Unknown operation: the operation kind is not supported
//	REQ003 - Request cancelled
//	REQ004 - Request timeout
//	DB001  - Connection refused: unable to reach the record store
//	DB002  - Connection reset: the store connection was interrupted
//	DB003  - Authentication: the store rejected the configured credentials
//	ERR000 - Unknown error (fallback)
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so more specific patterns come before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "no records provided",
		msg: UserMessage{
			Message: "The request contained no records",
			Action:  "Submit at least one record per bulk call",
			Code:    "REQ001",
		},
	},
	{
		pattern: "unsupported operation",
		msg: UserMessage{
			Message: "Unknown bulk operation",
			Action:  "Use update, upsert, or delete",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller batch or check your connection",
			Code:    "REQ004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the record store",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Record store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "authentication",
		msg: UserMessage{
			Message: "The record store rejected the configured credentials",
			Action:  "Check the database credentials in the configuration",
			Code:    "DB003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000). Support staff
// should check application logs for the original technical error when users
// report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a batch-level technical error to a user-friendly
// message. It searches the known patterns (case-insensitive) and returns the
// first match, or the generic ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether an error matches a known pattern (not the
// generic ERR000 fallback) and is safe to show to users as-is.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
