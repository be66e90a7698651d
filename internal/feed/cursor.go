package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// Cursor marks the last item of a page. The next page starts strictly after it.
type Cursor struct {
	Timestamp time.Time
	ID        int64
}

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%d", c.Timestamp.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token. An empty token yields a nil cursor.
func DecodeCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.InvalidArgumentf("invalid cursor")
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, domain.InvalidArgumentf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, domain.InvalidArgumentf("invalid cursor timestamp")
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, domain.InvalidArgumentf("invalid cursor id")
	}
	return &Cursor{Timestamp: ts, ID: id}, nil
}

// after reports whether a sorts after the cursor in newest-first order.
func (c *Cursor) after(a domain.Activity) bool {
	if c == nil {
		return true
	}
	if !a.Timestamp.Equal(c.Timestamp) {
		return a.Timestamp.Before(c.Timestamp)
	}
	return a.ID < c.ID
}
