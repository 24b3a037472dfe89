package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/models"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		op          models.Operation
		expected    string
		wantRemoved rune
		wantErr     bool
	}{
		{name: "insert at start", doc: "AT", op: ins(0, 'C', "a"), expected: "CAT"},
		{name: "insert at end", doc: "CAT", op: ins(3, 'S', "a"), expected: "CATS"},
		{name: "insert multibyte", doc: "мр", op: ins(1, 'и', "a"), expected: "мир"},
		{name: "insert past end", doc: "CAT", op: ins(4, 'S', "a"), wantErr: true},
		{name: "delete first", doc: "CAT", op: del(0, "a"), expected: "AT", wantRemoved: 'C'},
		{name: "delete last", doc: "CAT", op: del(2, "a"), expected: "CA", wantRemoved: 'T'},
		{name: "delete past end", doc: "CAT", op: del(3, "a"), wantErr: true},
		{name: "delete on empty", doc: "", op: del(0, "a"), wantErr: true},
		{name: "noop", doc: "CAT", op: del(models.NoopPosition, "a"), expected: "CAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := []rune(tt.doc)
			doc := []rune(tt.doc)

			result, removed, err := Apply(doc, tt.op)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPosition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, original, doc, "input document must not change")
		})
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		op   models.Operation
	}{
		{name: "insert", doc: "CAT", op: ins(1, 'X', "alice")},
		{name: "delete", doc: "CAT", op: del(1, "alice")},
		{name: "noop", doc: "CAT", op: del(models.NoopPosition, "alice")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied, removed, err := Apply([]rune(tt.doc), tt.op)
			require.NoError(t, err)

			restored, _, err := Apply(applied, Invert(tt.op, removed))
			require.NoError(t, err)
			assert.Equal(t, tt.doc, string(restored))
		})
	}
}

func TestApplyString_ReportsFailingOperation(t *testing.T) {
	_, err := ApplyString("ab", del(0, "a"), del(5, "a"))
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Contains(t, err.Error(), "operation 1")
}
