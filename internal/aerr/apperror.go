// Package aerr define application error carrying tags, user message and metadata.
package aerr

//
// apperror.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// AppError is immutable; every With* method return modified copy.
// Two AppErrors are equal (errors.Is) only when all fields are equal, so
// sentinel errors must be wrapped (Wrapf) rather than modified to stay
// comparable.
type AppError struct {
	err     error
	tags    []string
	msg     string
	userMsg string
	meta    map[string]any
	stack   []string
}

// NewSimple create error without stack; used for package-level sentinel errors.
func NewSimple(msg string, args ...any) AppError {
	return AppError{msg: fmt.Sprintf(msg, args...)}
}

// New create error without stack.
func New(msg string, args ...any) AppError {
	return NewSimple(msg, args...)
}

// Wrap `err` and remember caller location.
func Wrap(err error) AppError {
	return AppError{err: err, stack: getStack()}
}

// Wrapf wrap `err` with message and caller location.
func Wrapf(err error, msg string, args ...any) AppError {
	return AppError{err: err, msg: fmt.Sprintf(msg, args...), stack: getStack()}
}

// ApplyFor create copy of `aerr` wrapping `err` with current location.
// Optional `msg` arguments replace message and user message when not empty.
func ApplyFor(aerr AppError, err error, msg ...string) AppError {
	if err == nil {
		panic("err for apply is nil")
	}

	nerr := aerr.clone()
	nerr.err = err
	nerr.stack = getStack()

	if len(msg) > 0 && msg[0] != "" {
		nerr.msg = msg[0]
	}

	if len(msg) > 1 && msg[1] != "" {
		nerr.userMsg = msg[1]
	}

	return nerr
}

func (a AppError) WithMsg(msg string, args ...any) AppError {
	nerr := a.clone()
	nerr.msg = fmt.Sprintf(msg, args...)

	return nerr
}

func (a AppError) WithUserMsg(msg string, args ...any) AppError {
	nerr := a.clone()
	nerr.userMsg = fmt.Sprintf(msg, args...)

	return nerr
}

// WithTag add tag; existing tags are not duplicated.
func (a AppError) WithTag(tag string) AppError {
	if slices.Contains(a.tags, tag) {
		return a
	}

	nerr := a.clone()
	nerr.tags = append(nerr.tags, tag)

	return nerr
}

// WithMeta add key-value pairs to error metadata. Keys that are not strings
// are formatted with %v.
func (a AppError) WithMeta(keyval ...any) AppError {
	if len(keyval)%2 != 0 {
		panic("invalid argument number to call WithMeta")
	}

	nerr := a.clone()
	if nerr.meta == nil {
		nerr.meta = make(map[string]any, len(keyval)/2) //nolint:mnd
	}

	for kv := range slices.Chunk(keyval, 2) { //nolint:mnd
		key, ok := kv[0].(string)
		if !ok {
			key = fmt.Sprint(kv[0])
		}

		nerr.meta[key] = kv[1]
	}

	return nerr
}

func (a AppError) Is(target error) bool {
	other, ok := target.(AppError)
	if !ok {
		return false
	}

	return other.err == a.err &&
		other.msg == a.msg &&
		other.userMsg == a.userMsg &&
		slices.Equal(other.tags, a.tags) &&
		slices.Equal(other.stack, a.stack) &&
		maps.Equal(other.meta, a.meta)
}

func (a AppError) Unwrap() error {
	return a.err
}

func (a AppError) Error() string {
	switch {
	case a.err == nil:
		return a.msg
	case a.msg == "":
		return a.err.Error()
	default:
		return a.msg + "(" + a.err.Error() + ")"
	}
}

// String return message for user if defined.
func (a AppError) String() string {
	switch {
	case a.userMsg != "":
		return a.userMsg
	case a.msg != "":
		return a.msg
	case a.err != nil:
		return a.err.Error()
	default:
		return ""
	}
}

// Format support %+v that print whole chain with locations, tags and metadata.
func (a AppError) Format(state fmt.State, verb rune) {
	if verb == 'v' && state.Flag('+') {
		fmt.Fprintf(state, "%+v\n", CollectErrors(a))

		return
	}

	_, _ = io.WriteString(state, a.Error())
}

func (a AppError) clone() AppError {
	nerr := a
	nerr.tags = slices.Clone(a.tags)
	nerr.meta = maps.Clone(a.meta)

	return nerr
}

//-------------------------------------------------------------

// Flatten return all AppErrors in `err` chain from innermost.
func Flatten(err error) []AppError {
	var errs []AppError

	for ; err != nil; err = errors.Unwrap(err) {
		if ae, ok := err.(AppError); ok { //nolint:errorlint
			errs = append(errs, ae)
		}
	}

	slices.Reverse(errs)

	return errs
}

func HasTag(err error, tag string) bool {
	return slices.ContainsFunc(Flatten(err), func(ae AppError) bool {
		return slices.Contains(ae.tags, tag)
	})
}

// IsNotFound check if err is tagged as missing object.
func IsNotFound(err error) bool {
	return HasTag(err, NotFoundError)
}

// GetTags return unique tags from whole error chain.
func GetTags(err error) []string {
	var tags uniqueList

	for _, ae := range Flatten(err) {
		tags.append(ae.tags...)
	}

	if tags == nil {
		return []string{}
	}

	return tags
}

// GetUserMessage return first (innermost) user message in error chain.
func GetUserMessage(err error) string {
	for _, ae := range Flatten(err) {
		if ae.userMsg != "" {
			return ae.userMsg
		}
	}

	return ""
}

func GetUserMessageOr(err error, defaultmsg string) string {
	if msg := GetUserMessage(err); msg != "" {
		return msg
	}

	return defaultmsg
}

// CollectErrors describe each error in chain, innermost first.
func CollectErrors(err error) []string {
	var errs []string

	for ; err != nil; err = errors.Unwrap(err) {
		ae, ok := err.(AppError) //nolint:errorlint
		if !ok {
			errs = append(errs, err.Error())

			continue
		}

		desc := ae.Error()
		if len(ae.stack) > 0 {
			desc += " [" + ae.stack[0] + "]"
		}

		errs = append(errs, desc+fmt.Sprintf("%v/%v", ae.tags, ae.meta))
	}

	slices.Reverse(errs)

	return errs
}

//-------------------------------------------------------------

type uniqueList []string

func (u *uniqueList) append(value ...string) {
	for _, v := range value {
		if !slices.Contains(*u, v) {
			*u = append(*u, v)
		}
	}
}

//-------------------------------------------------------------

// ErrorMarshalFunc is zerolog.ErrorMarshalFunc that log AppError chain as object.
func ErrorMarshalFunc(err error) any {
	if err == nil {
		return nil
	}

	return zerologErrorMarshaller{err}
}

type zerologErrorMarshaller struct {
	err error
}

func (m zerologErrorMarshaller) MarshalZerologObject(event *zerolog.Event) {
	var (
		usermsg, tags uniqueList
		errs, stack   []string
		meta          map[string]any
	)

	for err := m.err; err != nil; err = errors.Unwrap(err) {
		ae, ok := err.(AppError) //nolint:errorlint
		if !ok {
			errs = append(errs, err.Error())

			continue
		}

		if ae.msg != "" {
			errs = append(errs, ae.msg)
		}

		if ae.userMsg != "" {
			usermsg.append(ae.userMsg)
		}

		if ae.stack != nil {
			stack = ae.stack
		}

		tags.append(ae.tags...)

		if len(ae.meta) > 0 {
			if meta == nil {
				meta = make(map[string]any)
			}

			maps.Copy(meta, ae.meta)
		}
	}

	if len(usermsg) > 0 {
		slices.Reverse(usermsg)
		event.Strs("user_msg", usermsg)
	}

	if stack != nil {
		event.Strs("stack", stack)
	}

	if errs != nil {
		slices.Reverse(errs)
		event.Strs("errors", errs)
	}

	if len(tags) > 0 {
		event.Strs("tags", tags)
	}

	if meta != nil {
		event.Any("meta", meta)
	}
}

//-------------------------------------------------------------

const (
	maxStack    = 10
	callersSkip = 3
)

//nolint:gochecknoglobals
var skipFunctions = []string{
	"net/http.HandlerFunc.ServeHTTP",
	"runtime.goexit",
}

// getStack return up to maxStack locations of callers of the function that
// created error.
func getStack() []string {
	pcs := make([]uintptr, 32) //nolint:mnd

	n := runtime.Callers(callersSkip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, min(n, maxStack))

	for len(stack) < maxStack {
		frame, more := frames.Next()

		if !slices.Contains(skipFunctions, frame.Function) {
			funcname := frame.Function[strings.LastIndex(frame.Function, "/")+1:]
			funcname = funcname[strings.Index(funcname, ".")+1:]
			stack = append(stack, frame.File+":"+strconv.Itoa(frame.Line)+":"+funcname)
		}

		if !more {
			break
		}
	}

	return stack
}
