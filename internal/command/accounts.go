package command

//
// accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"strings"
	"unicode"

	"gitlab.com/kabes/go-chat/internal/common"
)

// prohibitedIDChars are field delimiters used by account and message files.
const prohibitedIDChars = ",|"

// SignUpCmd define new account to create.
type SignUpCmd struct {
	UserID   string
	Password string
}

func (s *SignUpCmd) Validate() error {
	if s.UserID == "" || s.Password == "" {
		return common.ErrAccountInfoAbsence
	}

	if !IsValidUserID(s.UserID) {
		return common.ErrProhibitedCharInID
	}

	return nil
}

// IsValidUserID check user id not contain delimiters or control characters.
func IsValidUserID(userID string) bool {
	if strings.ContainsAny(userID, prohibitedIDChars) {
		return false
	}

	return !strings.ContainsFunc(userID, unicode.IsControl)
}
