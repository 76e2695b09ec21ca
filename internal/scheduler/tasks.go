package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskRegistrationCompensate retries a rollback delete that failed during registration.
const TaskRegistrationCompensate = "registration.compensate"

// Resources a compensation task can remove.
const (
	ResourceIdentity     = "identity"
	ResourceOrganization = "organization"
	ResourceProfile      = "profile"
)

type CompensationPayload struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func NewCompensationTask(payload CompensationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRegistrationCompensate, data), nil
}

func ParseCompensationPayload(task *asynq.Task) (CompensationPayload, error) {
	var payload CompensationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CompensationPayload{}, err
	}
	return payload, nil
}
