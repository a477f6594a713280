package shared

import "errors"

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNoLogger              = errors.New("no logger provided")
	ErrNoConfig              = errors.New("no config provided")
	ErrClientNotInitialized  = errors.New("client not initialized")
	ErrNoEventHandler        = errors.New("no event handler provided")
	ErrNoAPIKey              = errors.New("no API key provided")
	ErrSessionAlreadyRunning = errors.New("session already running")
	ErrTRHandlerAlreadySet   = errors.New("track remote handler already set")
	ErrTLHandlerAlreadySet   = errors.New("track local handler already set")
	ErrEHandlerAlreadySet    = errors.New("event handler already set")

	// Configuration errors: fail at open time, never partial-construct.
	ErrInvalidURL    = errors.New("invalid stream url")
	ErrInvalidScheme = errors.New("unrecognized url scheme")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Transport errors: the RX/TX path counts and continues.
	ErrSocketCreate = errors.New("socket creation failed")
	ErrSocketSend   = errors.New("socket send failed")
	ErrSocketRecv   = errors.New("socket receive failed")

	// Codec errors: counted per-stream, never fatal to the pipeline.
	ErrCodecEncode       = errors.New("codec encode failed")
	ErrCodecDecode       = errors.New("codec decode failed")
	ErrUnsupportedCodec  = errors.New("unsupported codec")
	ErrCodecNotAvailable = errors.New("codec not available in this build")

	// RTP framing errors.
	ErrBadRTPVersion = errors.New("rtp version mismatch")
	ErrBadPadding    = errors.New("rtp padding exceeds packet length")
	ErrShortPacket   = errors.New("rtp packet too short")

	// Stream discontinuity: counted, buffer flushed, state returns to refilling.
	ErrStreamReset  = errors.New("stream reset detected")
	ErrSSRCMismatch = errors.New("ssrc mismatch")

	// Clock errors: not fatal, but surfaced through the unified clock's state.
	ErrClockNotLocked  = errors.New("clock source not locked")
	ErrNoClockSource   = errors.New("no clock source configured")
	ErrClockAlreadyRun = errors.New("clock already running")

	// Resource exhaustion: fatal to the stream being opened.
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrThreadCreate      = errors.New("failed to start pipeline thread")

	// Plugin-host boundary.
	ErrPluginAlreadyOpen  = errors.New("plugin channel already open")
	ErrUnknownChannel     = errors.New("unknown channel handle")
	ErrRegistryNotInit    = errors.New("plugin registry not initialized")
	ErrSchemeAlreadyTaken = errors.New("url scheme already registered")
)
