package api

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec сериализует wire-сообщения в текстовый или бинарный формат
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Binary сообщает, что кадры websocket должны быть бинарными
	Binary() bool
}

// Codec names accepted by CodecByName
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

var (
	// JSON текстовый кодек (по умолчанию)
	JSON Codec = jsonCodec{}
	// Msgpack компактный бинарный кодек
	Msgpack Codec = msgpackCodec{}
)

// CodecByName возвращает кодек по имени. Пустое имя означает JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSON, nil
	case CodecMsgpack:
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return CodecJSON }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Binary() bool                       { return false }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return CodecMsgpack }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (msgpackCodec) Binary() bool                       { return true }

// DecodeMessage разбирает и валидирует конверт websocket-сообщения
func DecodeMessage(c Codec, data []byte) (*Message, error) {
	var msg Message
	if err := c.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeSubmit разбирает и валидирует запрос submit
func DecodeSubmit(c Codec, data []byte) (*SubmitRequest, error) {
	var req SubmitRequest
	if err := c.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if req.ClientID == "" {
		return nil, malformed("submit without client id")
	}
	if err := req.Op.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeAtomBatch разбирает и валидирует пакет атомов
func DecodeAtomBatch(c Codec, data []byte) (*AtomBatch, error) {
	var batch AtomBatch
	if err := c.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	for i := range batch.Atoms {
		if err := batch.Atoms[i].Validate(); err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
	}
	return &batch, nil
}
