package utils

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// NewOrderID returns a display order number such as OD482913-1a2b3c.
func NewOrderID() string {
	return fmt.Sprintf("OD%06d-%s", 100000+rand.Intn(900000), uuid.New().String()[:6])
}
