package replay

import (
	"time"

	"famfin/internal/core"
)

type (
	Entity string
	Action string
)

const (
	EntityMember      Entity = "member"
	EntityTransaction Entity = "transaction"

	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Op is one write that was performed against the local store after a remote
// failure and still has to be replayed against the remote API. Member and
// Transaction carry the record as written locally; TargetID is the remote id
// for updates and deletes.
type Op struct {
	ID          string            `json:"id"`
	Entity      Entity            `json:"entity"`
	Action      Action            `json:"action"`
	Member      *core.Member      `json:"member,omitempty"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	TargetID    string            `json:"targetId,omitempty"`
	QueuedAt    time.Time         `json:"queuedAt"`
}
