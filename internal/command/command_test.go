package command

//
// command_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"fmt"
	"testing"

	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/common"
)

func TestSignUpCmdValidate(t *testing.T) {
	tests := []struct {
		cmd SignUpCmd
		err error
	}{
		{SignUpCmd{"kaist", "password1"}, nil},
		{SignUpCmd{"", "password1"}, common.ErrAccountInfoAbsence},
		{SignUpCmd{"kaist", ""}, common.ErrAccountInfoAbsence},
		{SignUpCmd{"ka,ist", "password1"}, common.ErrProhibitedCharInID},
		{SignUpCmd{"ka|ist", "password1"}, common.ErrProhibitedCharInID},
		{SignUpCmd{"ka\nist", "password1"}, common.ErrProhibitedCharInID},
		{SignUpCmd{"żółw", "password1"}, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.cmd), func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.err == nil {
				assert.NoErr(t, err)
			} else {
				assert.ErrSpec(t, err, tt.err)
			}
		})
	}
}

func TestPostMessageCmdValidate(t *testing.T) {
	tests := []struct {
		cmd PostMessageCmd
		err error
	}{
		{PostMessageCmd{UserID: "u", Room: "r", Message: "hello | there"}, nil},
		{PostMessageCmd{UserID: "u", Room: "", Message: "hello"}, common.ErrRoomInfoAbsence},
		{PostMessageCmd{UserID: "u", Room: "r", Message: "  "}, common.ErrInvalidMessage},
		{PostMessageCmd{UserID: "u", Room: "r", Message: "a\nb"}, common.ErrInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.cmd), func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.err == nil {
				assert.NoErr(t, err)
			} else {
				assert.ErrSpec(t, err, tt.err)
			}
		})
	}

	cmd := PostMessageCmd{Room: "r", Message: "m"}
	assert.Err(t, cmd.Validate())
}

func TestCreateRoomCmdValidate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"general", nil},
		{"room with spaces", nil},
		{"", common.ErrRoomInfoAbsence},
		{" padded", common.ErrInvalidRoom},
		{"a|b", common.ErrInvalidRoom},
		{"a\tb", common.ErrInvalidRoom},
		{"0123456789012345678901234567890123456789012345678901234567890123456789", common.ErrInvalidRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := CreateRoomCmd{UserID: "u", Name: tt.name}

			err := cmd.Validate()
			if tt.err == nil {
				assert.NoErr(t, err)
			} else {
				assert.ErrSpec(t, err, tt.err)
			}
		})
	}
}
