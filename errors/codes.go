package errors

// ErrorCode identifies an application error category in responses and logs.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_UNAVAILABLE       ErrorCode = 1007

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	// Ingestion
	ErrorCode_INGEST_REJECTED ErrorCode = 3000

	// Aggregation
	ErrorCode_AGGREGATION_FAILED ErrorCode = 4000
	ErrorCode_CALL_NOT_FOUND     ErrorCode = 4001

	// Cache / reads
	ErrorCode_CACHE_FAILED   ErrorCode = 5000
	ErrorCode_READ_STALE     ErrorCode = 5001
	ErrorCode_READ_TIMED_OUT ErrorCode = 5002

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 6001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:              "OK",
	ErrorCode_INTERNAL:             "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:     "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:            "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:       "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:    "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:      "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:      "INVALID_PAYLOAD",
	ErrorCode_UNAVAILABLE:          "UNAVAILABLE",
	ErrorCode_AUTH_INVALID_TOKEN:   "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:   "AUTH_TOKEN_EXPIRED",
	ErrorCode_INGEST_REJECTED:      "INGEST_REJECTED",
	ErrorCode_AGGREGATION_FAILED:   "AGGREGATION_FAILED",
	ErrorCode_CALL_NOT_FOUND:       "CALL_NOT_FOUND",
	ErrorCode_CACHE_FAILED:         "CACHE_FAILED",
	ErrorCode_READ_STALE:           "READ_STALE",
	ErrorCode_READ_TIMED_OUT:       "READ_TIMED_OUT",
	ErrorCode_DB_CONNECTION_FAILED: "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:      "DB_QUERY_FAILED",
}

// String returns the symbolic name for the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
