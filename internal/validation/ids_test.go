package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{name: "simple", id: "notes"},
		{name: "with separators", id: "team-notes_v2.draft"},
		{name: "max length", id: strings.Repeat("a", 64)},
		{name: "empty", id: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too long", id: strings.Repeat("a", 65), wantErr: true, errMsg: "may contain only"},
		{name: "slash", id: "a/b", wantErr: true, errMsg: "may contain only"},
		{name: "space", id: "my notes", wantErr: true, errMsg: "may contain only"},
		{name: "cyrillic", id: "заметки", wantErr: true, errMsg: "may contain only"},
		{name: "dot", id: ".", wantErr: true, errMsg: "reserved"},
		{name: "dot dot", id: "..", wantErr: true, errMsg: "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.id)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidID)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateClientID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "name", id: "alice"},
		{name: "uuid", id: "3f1c7d0e-5b2a-4c1e-9a7d-0c8e2f4b6a1d"},
		{name: "host and port", id: "laptop:42"},
		{name: "empty", id: "", wantErr: true},
		{name: "nul byte", id: "a\x00b", wantErr: true},
		{name: "space", id: "alice smith", wantErr: true},
		{name: "too long", id: strings.Repeat("x", 129), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
