package middlewares

// CtxRequestID is the gin context key carrying the per-request id set by
// RequestID and echoed into error envelopes and log lines.
const CtxRequestID = "request_id"
