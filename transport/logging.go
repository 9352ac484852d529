package transport

import (
	"fmt"
	"strconv"

	"github.com/gaborage/go-xmlrpc/logger"
)

const (
	defaultMaxPayloadLogBytes = 1024

	logMsgRequest  = "XML-RPC request"
	logMsgResponse = "XML-RPC response"
)

// logRequest logs the outbound call once, before the first attempt.
func (e *Executor) logRequest(method, endpoint string, body []byte, requestID string) {
	event := e.logger.Info().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", endpoint).
		Str("request_id", requestID)
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(logMsgRequest)

	if !e.config.LogPayloads {
		return
	}
	preview, truncated := e.payloadPreview(body)
	e.logger.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("request_id", requestID).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgRequest)
}

// logResponse logs a successful call with its statistics.
func (e *Executor) logResponse(body []byte, requestID string) {
	event := e.logger.Info().
		Str("direction", "inbound").
		Int("attempts", e.stats.AttemptsUsed).
		Dur("elapsed", e.stats.Elapsed).
		Str("request_id", requestID)
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(logMsgResponse)

	if !e.config.LogPayloads {
		return
	}
	preview, truncated := e.payloadPreview(body)
	e.logger.Debug().
		Str("direction", "inbound").
		Str("request_id", requestID).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgResponse)
}

func (e *Executor) payloadPreview(body []byte) ([]byte, bool) {
	limit := e.config.MaxPayloadLogBytes
	if limit <= 0 {
		limit = defaultMaxPayloadLogBytes
	}
	if len(body) > limit {
		return body[:limit], true
	}
	return body, false
}

// restyLogger routes resty's internal messages to the executor's logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}
