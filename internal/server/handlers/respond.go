package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/gophtext/internal/ot"
	"github.com/iudanet/gophtext/pkg/api"
)

// ContentTypeMsgpack тип содержимого бинарного кодека
const ContentTypeMsgpack = "application/msgpack"

const maxBodySize = 1 << 20

// requestCodec выбирает кодек тела запроса по Content-Type
func requestCodec(r *http.Request) api.Codec {
	if strings.HasPrefix(r.Header.Get("Content-Type"), ContentTypeMsgpack) {
		return api.Msgpack
	}
	return api.JSON
}

// responseCodec выбирает кодек ответа по Accept
func responseCodec(r *http.Request) api.Codec {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack) {
		return api.Msgpack
	}
	return api.JSON
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("%w: body too large", api.ErrMalformedPayload)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	write(w, logger, api.JSON, status, v)
}

func write(w http.ResponseWriter, logger *slog.Logger, codec api.Codec, status int, v any) {
	data, err := codec.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	contentType := "application/json"
	if codec.Binary() {
		contentType = ContentTypeMsgpack
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}

// writeError отображает ошибку в HTTP статус. Детали внутренних ошибок
// остаются в логе, клиент получает общее сообщение.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, api.ErrMalformedPayload):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, ot.ErrFutureVersion):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, ot.ErrSequencerClosed):
		status, message = http.StatusServiceUnavailable, "Sequencer unavailable"
	default:
		logger.Error("Request failed", "error", err)
	}

	writeJSON(w, logger, status, api.ErrorResponse{Error: message})
}
