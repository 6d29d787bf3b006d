package util

import "github.com/google/uuid"

// NewSessionID gera identificadores opacos para cerimônias temporárias.
func NewSessionID() string {
	return uuid.NewString()
}
