package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeExpiryDigest = "license:expiry:digest"
)

type ExpiryDigestPayload struct {
	WithinDays int `json:"within_days"`
}

func NewExpiryDigestTask(withinDays int, opts ...asynq.Option) (*asynq.Task, error) {
	payload := ExpiryDigestPayload{WithinDays: withinDays}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypeExpiryDigest, payloadBytes, allOpts...), nil
}
