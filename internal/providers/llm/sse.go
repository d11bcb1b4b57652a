package llm

import (
	"bytes"
	"encoding/json"
)

const (
	dataPrefix    = "data: "
	doneSentinel  = "[DONE]"
	maxRecordSize = 1 << 20
)

// Parser turns the bytes of a chat-completions event stream into content
// deltas. Records are only interpreted once their terminating newline has
// arrived, so the deltas do not depend on how the stream was chunked.
//
// Lines longer than maxRecordSize are discarded whole, whether they arrive in
// one read or many, so the limit does not break that guarantee.
//
// A complete data line whose JSON does not decode is held back and joined
// with the following non-data lines until it decodes. It is dropped when a new
// data record starts, when it outgrows maxRecordSize, or at end of stream.
type Parser struct {
	buf  []byte
	held []byte
	// skipping discards the rest of an oversized line up to its newline
	skipping bool
	done     bool
	dropped  int
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one read and returns the deltas completed by it, in order.
func (p *Parser) Feed(chunk []byte) []string {
	if p.done {
		return nil
	}
	p.buf = append(p.buf, chunk...)

	var deltas []string
	for !p.done {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			break
		}
		line := p.buf[:idx]
		p.buf = p.buf[idx+1:]

		switch {
		case p.skipping:
			p.skipping = false
		case len(line) > maxRecordSize:
			p.dropped++
		default:
			if delta, ok := p.line(line); ok {
				deltas = append(deltas, delta)
			}
		}
	}

	if p.done {
		p.buf = nil
		return deltas
	}

	if p.skipping {
		p.buf = nil
	} else if len(p.buf) > maxRecordSize {
		p.buf = nil
		p.dropped++
		p.skipping = true
	} else if len(p.buf) > 0 {
		// compact so the backing array does not grow with the whole stream
		p.buf = append([]byte(nil), p.buf...)
	} else {
		p.buf = p.buf[:0]
	}
	return deltas
}

// Close flushes an unterminated final line and gives up on a held record.
func (p *Parser) Close() []string {
	if p.done {
		return nil
	}

	var deltas []string
	if len(p.buf) > 0 {
		if delta, ok := p.line(p.buf); ok {
			deltas = append(deltas, delta)
		}
		p.buf = nil
	}
	if p.held != nil {
		p.held = nil
		p.dropped++
	}
	p.done = true
	return deltas
}

// Done reports whether the [DONE] sentinel has been seen.
func (p *Parser) Done() bool {
	return p.done
}

// Dropped is the number of records abandoned as malformed.
func (p *Parser) Dropped() int {
	return p.dropped
}

func (p *Parser) line(raw []byte) (string, bool) {
	line := bytes.TrimSuffix(raw, []byte("\r"))

	if p.held != nil {
		if !bytes.HasPrefix(line, []byte(dataPrefix)) {
			return p.continueHeld(line)
		}
		p.held = nil
		p.dropped++
	}

	if len(bytes.TrimSpace(line)) == 0 || line[0] == ':' {
		return "", false
	}
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return "", false
	}

	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if string(payload) == doneSentinel {
		p.done = true
		return "", false
	}

	delta, err := decodeDelta(payload)
	if err != nil {
		p.held = append([]byte(nil), payload...)
		return "", false
	}
	return delta, delta != ""
}

func (p *Parser) continueHeld(line []byte) (string, bool) {
	if len(bytes.TrimSpace(line)) == 0 || line[0] == ':' {
		return "", false
	}

	joined := make([]byte, 0, len(p.held)+1+len(line))
	joined = append(joined, p.held...)
	joined = append(joined, '\n')
	joined = append(joined, line...)

	delta, err := decodeDelta(joined)
	if err != nil {
		if len(joined) > maxRecordSize {
			p.held = nil
			p.dropped++
			return "", false
		}
		p.held = joined
		return "", false
	}
	p.held = nil
	return delta, delta != ""
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func decodeDelta(payload []byte) (string, error) {
	var chunk streamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", err
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}
