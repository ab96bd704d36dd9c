package game

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/mcoot/galapa/internal/model"
)

const (
	sessionPrefix  = "DQUEST10"
	sessionSalt    = "DraqonQuestX"
	encodedSession = 64
)

var sessionIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{56}$`)

// ValidSessionID reports whether sid is a session id issued by the login server
func ValidSessionID(sid string) bool {
	return sessionIDPattern.MatchString(sid)
}

// EncodeSessionID turns the login session id into the form the game client
// expects on its command line. The encoding is keyed on the current minute.
func EncodeSessionID(sid string, now time.Time) (string, error) {
	if !ValidSessionID(sid) {
		return "", fmt.Errorf("%w: session id must be 56 hex digits", model.ErrInvalidArgument)
	}

	minutes := strconv.FormatInt(now.Unix()/60, 10)
	key := md5.Sum([]byte(minutes + sessionSalt))
	input := sessionPrefix + sid

	out := make([]byte, encodedSession)
	for i := range out {
		c := 0
		if i < len(input) {
			c = int(input[i])
		}
		out[i] = byte((c+int(key[i%len(key)])-48)%78 + 48)
	}
	return string(out), nil
}

// StartupToken builds the -StartupToken argument from a millisecond tick count.
// The official launcher randomizes the first four characters; the game does
// not check them.
func StartupToken(ticks uint32) string {
	const mask = "SqEx"
	base := []byte("0000" + strconv.FormatUint(uint64(ticks>>1), 10))
	for i := range base {
		base[i] ^= mask[i&3]
	}
	return string(base)
}
