package config

//
// debugflags.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"slices"
	"strings"
)

//-------------------------------------------------------------

type DebugFlag string

const (
	// DebugMsgBody enable logging request and response body and headers.
	DebugMsgBody = DebugFlag("logbody")
	// DebugDo enable logging samber/do and /debug/do endpoint.
	DebugDo = DebugFlag("do")
	// DebugGo enable /debug/pprof endpoint.
	DebugGo = DebugFlag("go")
	// DebugRouter show defined routes.
	DebugRouter = DebugFlag("router")
	// DebugDBQueryMetrics enable metrics for query metrics.
	DebugDBQueryMetrics = DebugFlag("querymetrics")
	// DebugFlightRecorder enable flight recorder for long server queries.
	DebugFlightRecorder = DebugFlag("flightrecorder")
	// DebugTrace enable tracing with net/trace.
	DebugTrace = DebugFlag("trace")
	// DebugSessions enable /debug/sessions endpoint with list of live sessions.
	DebugSessions = DebugFlag("sessions")

	// DebugAll enable all debug flags.
	DebugAll = DebugFlag("all")
	// DebugNone disable all debug flags.
	DebugNone = DebugFlag("")
)

// DebugFlags is set of enabled debug flags; "all" enable every flag.
type DebugFlags []DebugFlag

// NewDebugFlags parse comma separated list of flags. Empty entries and
// duplicates are skipped.
func NewDebugFlags(flags string) DebugFlags {
	var df DebugFlags

	for f := range strings.SplitSeq(flags, ",") {
		flag := DebugFlag(strings.ToLower(strings.TrimSpace(f)))
		if flag != DebugNone && !slices.Contains(df, flag) {
			df = append(df, flag)
		}
	}

	return df
}

func (d DebugFlags) HasFlag(flag DebugFlag) bool {
	return flag != DebugNone && (slices.Contains(d, DebugAll) || slices.Contains(d, flag))
}

func (d DebugFlags) String() string {
	names := make([]string, len(d))
	for i, f := range d {
		names[i] = string(f)
	}

	return strings.Join(names, ",")
}
