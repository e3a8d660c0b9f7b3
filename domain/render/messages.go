package render

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/domain/stream"
)

// Video channel message types.
const (
	MsgFrame = "frame"
	MsgError = "error"
)

type frameMessage struct {
	Data string `json:"data"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// FrameHandler feeds {type:"frame"} messages into p. Messages without data are dropped.
func FrameHandler(p *Pipeline, logger zerolog.Logger) stream.MessageHandler {
	return func(msg stream.Message) {
		var fm frameMessage
		if err := msg.Decode(&fm); err != nil || fm.Data == "" {
			logger.Warn().Err(err).Msg("dropping malformed frame message")
			return
		}
		p.OnFrame(fm.Data)
	}
}

// ErrorHandler reports {type:"error"} messages from the backend to report.
func ErrorHandler(report func(string), logger zerolog.Logger) stream.MessageHandler {
	return func(msg stream.Message) {
		var em errorMessage
		if err := msg.Decode(&em); err != nil {
			logger.Warn().Err(err).Msg("dropping malformed error message")
			return
		}
		logger.Error().Str("message", em.Message).Msg("backend video error")
		if report != nil {
			report(em.Message)
		}
	}
}

// ResolutionLogger returns a surface listener that logs whenever the decoded
// frame size changes. Safe for concurrent use by the decode workers.
func ResolutionLogger(logger zerolog.Logger) func(Surface) {
	var (
		mu   sync.Mutex
		last geometry.Size
	)
	return func(s Surface) {
		mu.Lock()
		changed := s.Size != last
		last = s.Size
		mu.Unlock()
		if changed {
			logger.Info().Int("width", s.Size.W).Int("height", s.Size.H).Msg("video resolution changed")
		}
	}
}
