package common

// APIKeyHeaderName is the HTTP header carrying the service-level primary token.
const APIKeyHeaderName = "X-API-KEY"

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"
