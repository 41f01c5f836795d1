package common

//
// tracing.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"runtime/trace"
	"strings"

	xtrace "golang.org/x/net/trace"
)

// TraceLazyPrintf add message to runtime trace (when enabled) and to net/trace
// request trace from context. Text before first ":" in format is used as
// runtime trace category.
func TraceLazyPrintf(ctx context.Context, format string, a ...any) {
	traceLog(ctx, false, format, a...)
}

// TraceErrorLazyPrintf work like TraceLazyPrintf and mark request trace as failed.
func TraceErrorLazyPrintf(ctx context.Context, format string, a ...any) {
	traceLog(ctx, true, format, a...)
}

func traceLog(ctx context.Context, isErr bool, format string, a ...any) {
	if trace.IsEnabled() {
		category, _, _ := strings.Cut(format, ":")
		if isErr {
			category = strings.TrimSpace("error " + category)
		}

		trace.Logf(ctx, category, format, a...)
	}

	if tr, ok := xtrace.FromContext(ctx); ok && tr != nil {
		tr.LazyPrintf(format, a...)

		if isErr {
			tr.SetError()
		}
	}
}

//-------------------------------------------------------------

type ctxEventLogKey struct{}

// NewCtxEventLog create net/trace event log for long-running worker and put it
// into context; returned function finish the log.
func NewCtxEventLog(ctx context.Context, family, title string) (context.Context, func()) {
	events := xtrace.NewEventLog(family, title)

	return context.WithValue(ctx, ctxEventLogKey{}, events), events.Finish
}

// EventLogPrintf write entry into event log from context, if any.
func EventLogPrintf(ctx context.Context, format string, a ...any) {
	if events, ok := ctx.Value(ctxEventLogKey{}).(xtrace.EventLog); ok {
		events.Printf(format, a...)
	}
}

//-------------------------------------------------------------

// Region wrap runtime/trace region.
type Region struct {
	r *trace.Region
}

func NewRegion(ctx context.Context, regionType string) Region {
	return Region{trace.StartRegion(ctx, regionType)}
}

func (r Region) End() {
	r.r.End()
}
