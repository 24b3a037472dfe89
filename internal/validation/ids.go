package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidID indicates a malformed document or client identifier
var ErrInvalidID = errors.New("invalid identifier")

// DocumentPattern допустимый идентификатор документа. Он попадает в путь URL,
// имя bucket bbolt и имя канала Redis.
// Только латинские буквы, цифры, '_', '-', '.'; длина 1-64 символа
var DocumentPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// ClientPattern допустимый идентификатор клиента или реплики (в том числе UUID).
// Нулевой байт исключен: он разделяет реплику и счетчик в ключах атомов.
var ClientPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]{1,128}$`)

// ValidateDocumentID проверяет идентификатор документа
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id cannot be empty", ErrInvalidID)
	}
	if !DocumentPattern.MatchString(id) {
		return fmt.Errorf("%w: document id %q may contain only letters, digits, '_', '-' and '.' (up to 64)", ErrInvalidID, id)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: document id %q is reserved", ErrInvalidID, id)
	}
	return nil
}

// ValidateClientID проверяет идентификатор клиента или реплики
func ValidateClientID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: client id cannot be empty", ErrInvalidID)
	}
	if !ClientPattern.MatchString(id) {
		return fmt.Errorf("%w: client id %q may contain only letters, digits, '_', '-', '.' and ':' (up to 128)", ErrInvalidID, id)
	}
	return nil
}
