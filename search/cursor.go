package search

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/index"
)

// Cursor is the continuation point of a search: the last hit returned and
// the fuzziness level the first page settled on. It is immutable and only
// serialized at the API boundary.
type Cursor struct {
	DocID     int64
	Score     float64
	Fuzziness int
}

// String encodes the cursor as an opaque URL-safe token.
func (c Cursor) String() string {
	raw := fmt.Sprintf("%d:%x:%d", c.DocID, math.Float64bits(c.Score), c.Fuzziness)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// After returns the index continuation marker.
func (c Cursor) After() *index.ScoreDoc {
	return &index.ScoreDoc{ID: c.DocID, Score: c.Score}
}

// ParseCursor decodes a token produced by Cursor.String. The score keeps
// its exact bits so continuation compares equal to the stored score.
func ParseCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor")
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor position")
	}
	bits, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor score")
	}
	score := math.Float64frombits(bits)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor score")
	}
	fuzz, err := strconv.Atoi(parts[2])
	if err != nil || fuzz < 0 || fuzz > MaxFuzziness {
		return Cursor{}, errors.NewInvalidRequestError("malformed cursor fuzziness")
	}
	return Cursor{DocID: id, Score: score, Fuzziness: fuzz}, nil
}
