package core

import "context"

// Strategy selects how a Transport talks to the remote model.
type Strategy string

const (
	StrategyStreaming  Strategy = "streaming"
	StrategySingleShot Strategy = "single-shot"
)

// ChatRequest is everything a transport needs for one exchange. History is
// already windowed and ends with the newest user turn.
type ChatRequest struct {
	System  string
	History []Turn
}

// DeltaSink receives model output as it arrives.
type DeltaSink interface {
	OnDelta(text string)
	OnComplete(finalText string)
}

type Transport interface {
	Strategy() Strategy
	Send(ctx context.Context, req ChatRequest, sink DeltaSink) error
}
