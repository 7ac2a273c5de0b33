package platform

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is the structured failure a Platform Client operation returns when
// the platform answers with a status the operation does not accept.
// Transport failures, retries exhausted in the Session Layer and response
// bodies that fail to parse are returned as plain errors, not as *Error.
type Error struct {
	Status  int
	RawBody string
	Context map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("platform error: status=%d body=%s", e.Status, truncate(e.RawBody, 500))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// StatusBodyMessage formats the error message spec.md §4.6 prescribes for a
// failed probe: "status:body_prefix(500)".
func (e *Error) StatusBodyMessage() string {
	return fmt.Sprintf("%d:%s", e.Status, truncate(e.RawBody, 500))
}

// IsOperationNotAuthorized reports spec.md §4.6's semantic-unavailable case:
// a 400 whose body mentions operationNotAuthorized.
func (e *Error) IsOperationNotAuthorized() bool {
	return e.Status == 400 && strings.Contains(strings.ToLower(e.RawBody), "operationnotauthorized")
}

// IsEmptyItemsSimulation reports spec.md §4.6's other semantic-unavailable
// case: a 400 whose body is a well-formed simulation response carrying no
// items.
func (e *Error) IsEmptyItemsSimulation() bool {
	if e.Status != 400 {
		return false
	}
	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(e.RawBody), &body); err != nil {
		return false
	}
	return len(body.Items) == 0
}
