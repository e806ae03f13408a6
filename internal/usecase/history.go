package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"

	"folio-assistant/internal/domain"
)

// DefaultStorageKey is the persisted key of the local chat transcript.
const DefaultStorageKey = "assistant_chat_v1"

// historyVersion is the current persisted envelope version.
const historyVersion = 1

type persistedHistory struct {
	Version  int              `json:"version"`
	Messages []domain.Message `json:"messages"`
}

func encodeHistory(msgs []domain.Message) ([]byte, error) {
	return json.Marshal(persistedHistory{Version: historyVersion, Messages: msgs})
}

// decodeHistory reads the versioned envelope. A bare JSON array is the
// pre-envelope shape and is migrated as-is.
func decodeHistory(data []byte) ([]domain.Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty history payload")
	}

	var msgs []domain.Message
	if data[0] == '[' {
		if err := json.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("decode legacy history: %w", err)
		}
	} else {
		var env persistedHistory
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		if env.Version != historyVersion {
			return nil, fmt.Errorf("unsupported history version %d", env.Version)
		}
		msgs = env.Messages
	}

	for i, m := range msgs {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return nil, fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
	}
	return msgs, nil
}
