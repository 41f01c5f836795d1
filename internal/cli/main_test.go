// main_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
package cli

import (
	"errors"
	"strings"
	"testing"

	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/assert"
)

func TestPrintError(t *testing.T) {
	var out strings.Builder

	printError(&out, errors.New("plain failure"), false)
	assert.Equal(t, out.String(), "Error: plain failure\n")

	out.Reset()

	err := aerr.Wrapf(errors.New("io"), "open failed").WithUserMsg("cannot open store")
	printError(&out, err, true)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, lines[0], "Error: cannot open store")
	assert.True(t, strings.HasPrefix(lines[1], "Details: "))
	assert.True(t, strings.Contains(out.String(), "open failed"))
}

func TestConnstrValidator(t *testing.T) {
	assert.Err(t, connstrValidator(""))
	assert.NoErr(t, connstrValidator("chat.sqlite"))
}
