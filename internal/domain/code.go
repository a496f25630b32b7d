package domain

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	BookingCodePrefix = "BK"
	TicketCodePrefix  = "TK"

	codeRandomLength = 4
	base36Alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeGenerator returns a fresh code for prefix. Implementations must not
// check uniqueness; callers do.
type CodeGenerator func(prefix string, now time.Time) (string, error)

// NewCode builds prefix + base36(unix millis) + 4 random base36 characters.
func NewCode(prefix string, now time.Time) (string, error) {
	return newCode(rand.Reader, prefix, now)
}

func newCode(r io.Reader, prefix string, now time.Time) (string, error) {
	var sb strings.Builder

	sb.WriteString(prefix)
	sb.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	limit := big.NewInt(int64(len(base36Alphabet)))
	for range codeRandomLength {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", err
		}

		sb.WriteByte(base36Alphabet[n.Int64()])
	}

	return sb.String(), nil
}
