package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsert(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		wantErr error
	}{
		{name: "start of document", pos: 0},
		{name: "middle of document", pos: 5},
		{name: "negative position", pos: -1, wantErr: ErrNegativePosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := NewInsert(tt.pos, 'x', "alice")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OpInsert, op.Type)
			assert.Equal(t, tt.pos, op.Position)
			assert.Equal(t, 'x', op.Value)
			assert.Equal(t, "alice", op.Originator)
			assert.False(t, op.IsNoop())
		})
	}
}

func TestNewDelete(t *testing.T) {
	op, err := NewDelete(3, "bob")
	require.NoError(t, err)
	assert.True(t, op.IsDelete())
	assert.Equal(t, 3, op.Position)

	_, err = NewDelete(-2, "bob")
	assert.ErrorIs(t, err, ErrNegativePosition)
}

func TestOperation_Equal(t *testing.T) {
	ins := Operation{Type: OpInsert, Position: 1, Value: 'a', Originator: "alice"}
	del := Operation{Type: OpDelete, Position: 1, Originator: "alice"}

	tests := []struct {
		name     string
		a        Operation
		b        Operation
		expected bool
	}{
		{name: "same insert", a: ins, b: ins, expected: true},
		{name: "different value", a: ins, b: Operation{Type: OpInsert, Position: 1, Value: 'b', Originator: "alice"}, expected: false},
		{name: "different position", a: ins, b: ins.WithPosition(2), expected: false},
		{name: "different originator", a: del, b: Operation{Type: OpDelete, Position: 1, Originator: "bob"}, expected: false},
		{name: "delete ignores value", a: del, b: Operation{Type: OpDelete, Position: 1, Value: 'z', Originator: "alice"}, expected: true},
		{name: "different type", a: ins, b: del, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

func TestOperation_WithPositionDoesNotMutate(t *testing.T) {
	op, err := NewInsert(2, 'q', "alice")
	require.NoError(t, err)

	moved := op.WithPosition(7)
	noop := op.AsNoop()

	assert.Equal(t, 2, op.Position)
	assert.Equal(t, 7, moved.Position)
	assert.True(t, noop.IsNoop())
	assert.False(t, op.IsNoop())
}

func TestOperation_Validate(t *testing.T) {
	assert.NoError(t, Operation{Type: OpInsert, Position: 0}.Validate())
	assert.NoError(t, Operation{Type: OpDelete, Position: NoopPosition}.Validate())
	assert.ErrorIs(t, Operation{Type: OpDelete, Position: -5}.Validate(), ErrNegativePosition)
	assert.ErrorIs(t, Operation{Type: 0, Position: 1}.Validate(), ErrUnknownOpType)
}

func TestParseOpType(t *testing.T) {
	typ, err := ParseOpType("insert")
	require.NoError(t, err)
	assert.Equal(t, OpInsert, typ)
	assert.Equal(t, "insert", typ.String())

	typ, err = ParseOpType("delete")
	require.NoError(t, err)
	assert.Equal(t, "delete", typ.String())

	_, err = ParseOpType("replace")
	assert.ErrorIs(t, err, ErrUnknownOpType)
}
