package config

//
// version.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"fmt"
	"runtime/debug"
)

// Build information; set by linker flags on release builds.
var (
	Version   = "dev"
	Revision  = ""
	BuildDate = ""
	BuildUser = ""
	Branch    = ""

	VersionString = ""
)

func init() { //nolint:gochecknoinits
	if Version != "dev" {
		VersionString = fmt.Sprintf("Ver: %s, Rev: %s, Build: %s by %s from %s",
			Version, Revision, BuildDate, BuildUser, Branch)

		return
	}

	VersionString = Version

	if modified, ok := readVCSInfo(); ok {
		VersionString = fmt.Sprintf("Rev: %s at %s %s", Revision, BuildDate, modified)
	}
}

// readVCSInfo fill Revision and BuildDate from embedded build info; return
// vcs.modified flag.
func readVCSInfo() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}

	var modified string

	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			Revision = kv.Value
		case "vcs.time":
			BuildDate = kv.Value
		case "vcs.modified":
			modified = kv.Value
		}
	}

	return modified, true
}

// UserAgent return value of User-Agent header used by chat client.
func UserAgent() string {
	return "go-chat/" + Version
}
