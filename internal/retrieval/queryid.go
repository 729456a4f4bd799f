package retrieval

import "github.com/google/uuid"

func newQueryID() string {
	return uuid.NewString()
}
