package queue

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyStrategy derives the broker id of a job.
type KeyStrategy interface {
	Key(msg Message, payload []byte, at time.Time) (string, error)
}

// KeyStrategyFunc adapts a function to KeyStrategy.
type KeyStrategyFunc func(msg Message, payload []byte, at time.Time) (string, error)

func (f KeyStrategyFunc) Key(msg Message, payload []byte, at time.Time) (string, error) {
	return f(msg, payload, at)
}

// RecipientTimestampKey builds ids of the form "<recipient>:<unix-ms>:<suffix>".
// The random suffix keeps ids unique when several jobs for one recipient are
// produced in the same millisecond. Ids are not idempotency keys.
type RecipientTimestampKey struct{}

func (RecipientTimestampKey) Key(msg Message, _ []byte, at time.Time) (string, error) {
	if strings.TrimSpace(msg.RecipientID) == "" {
		return "", ErrRecipientRequired
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return msg.RecipientID + ":" + strconv.FormatInt(at.UnixMilli(), 10) + ":" + suffix, nil
}

// PayloadHashKey derives the id from the message content, so the same message
// produced twice maps to the same id and the broker drops the repeat.
type PayloadHashKey struct{}

func (PayloadHashKey) Key(msg Message, payload []byte, _ time.Time) (string, error) {
	if strings.TrimSpace(msg.RecipientID) == "" {
		return "", ErrRecipientRequired
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", msg.Name, msg.Type, msg.RecipientID)
	h.Write(payload)
	return msg.RecipientID + ":" + hex.EncodeToString(h.Sum(nil))[:32], nil
}
