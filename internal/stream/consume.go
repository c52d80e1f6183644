// Package stream decodes the chat relay's event stream into text.
package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	dataPrefix = "data: "
	doneLine   = "data: [DONE]"
)

// Consume reads an event stream to the end and returns the concatenated
// delta content of every data line, in arrival order. onDelta, if set, is
// called once per non-empty fragment. Lines that do not decode are skipped.
// A read error is returned together with whatever text was collected.
func Consume(r io.Reader, onDelta func(string)) (string, error) {
	var full strings.Builder
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if fragment, ok := Fragment(line); ok {
				full.WriteString(fragment)
				if onDelta != nil {
					onDelta(fragment)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return full.String(), nil
			}
			return full.String(), fmt.Errorf("failed to read event stream: %w", err)
		}
	}
}

// Fragment extracts the delta content carried by a single stream line.
// It reports false for non-data lines, the terminator, malformed JSON and
// chunks without content.
func Fragment(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) || line == doneLine {
		return "", false
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	content := chunk.Choices[0].Delta.Content
	return content, content != ""
}
