package config

//
// session.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

const (
	DefaultSessionAliveTime     = 30 * time.Second
	DefaultSessionSweepInterval = time.Second

	SessionPolicyReuse  = "reuse"
	SessionPolicyRotate = "rotate"
)

// SessionConf configure session manager.
type SessionConf struct {
	AliveTime     time.Duration
	SweepInterval time.Duration
	Policy        string
}

func (s *SessionConf) Validate() error {
	if s.AliveTime <= 0 {
		return aerr.ErrValidation.WithUserMsg("session alive time must be positive")
	}

	if s.SweepInterval <= 0 {
		return aerr.ErrValidation.WithUserMsg("session sweep interval must be positive")
	}

	switch s.Policy {
	case "":
		s.Policy = SessionPolicyReuse
	case SessionPolicyReuse, SessionPolicyRotate:
	default:
		return aerr.ErrValidation.WithUserMsg("invalid session policy %q", s.Policy)
	}

	if s.SweepInterval > s.AliveTime {
		log.Logger.Warn().Object("session_conf", s).
			Msg("session sweep interval is longer than alive time; expiration will be delayed")
	}

	return nil
}

func (s *SessionConf) MarshalZerologObject(event *zerolog.Event) {
	event.Dur("alive_time", s.AliveTime).
		Dur("sweep_interval", s.SweepInterval).
		Str("policy", s.Policy)
}
