package docker

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputCallback is invoked with incremental build or push messages.
type OutputCallback func(string)

// drainStream decodes a JSON message stream from the daemon, forwarding
// renderable lines to onOutput and returning the first embedded error.
func drainStream(r io.Reader, onOutput OutputCallback) error {
	decoder := json.NewDecoder(r)
	for {
		var msg streamMessage
		if err := decoder.Decode(&msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode daemon output: %w", err)
		}
		if errMsg := msg.errorMessage(); errMsg != "" {
			return fmt.Errorf("daemon reported: %s", errMsg)
		}
		line := msg.render()
		if line != "" && onOutput != nil {
			onOutput(line)
		}
	}
}

type streamMessage struct {
	Stream         string                 `json:"stream"`
	Status         string                 `json:"status"`
	ID             string                 `json:"id"`
	Progress       string                 `json:"progress"`
	ProgressDetail progressDetail         `json:"progressDetail"`
	Error          string                 `json:"error"`
	ErrorDetail    streamErrorDetail      `json:"errorDetail"`
	Aux            map[string]interface{} `json:"aux"`
}

type progressDetail struct {
	Current int64 `json:"current"`
	Total   int64 `json:"total"`
}

type streamErrorDetail struct {
	Message string `json:"message"`
}

func (m streamMessage) errorMessage() string {
	if strings.TrimSpace(m.Error) != "" {
		return strings.TrimSpace(m.Error)
	}
	if strings.TrimSpace(m.ErrorDetail.Message) != "" {
		return strings.TrimSpace(m.ErrorDetail.Message)
	}
	return ""
}

func (m streamMessage) render() string {
	if m.Stream != "" {
		return m.Stream
	}
	if m.Status != "" {
		parts := make([]string, 0, 4)
		if strings.TrimSpace(m.ID) != "" {
			parts = append(parts, strings.TrimSpace(m.ID))
		}
		parts = append(parts, strings.TrimSpace(m.Status))
		progress := strings.TrimSpace(m.Progress)
		if progress == "" && (m.ProgressDetail.Current > 0 || m.ProgressDetail.Total > 0) {
			if m.ProgressDetail.Total > 0 {
				progress = fmt.Sprintf("%d/%d", m.ProgressDetail.Current, m.ProgressDetail.Total)
			} else {
				progress = fmt.Sprintf("%d", m.ProgressDetail.Current)
			}
		}
		if progress != "" {
			parts = append(parts, progress)
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	if len(m.Aux) > 0 {
		if id, ok := m.Aux["ID"]; ok {
			return fmt.Sprintf("image id: %v", id)
		}
		if digest, ok := m.Aux["Digest"]; ok {
			return fmt.Sprintf("digest: %v", digest)
		}
	}
	return ""
}
