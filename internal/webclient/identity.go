package webclient

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"os/user"
	"runtime"

	"golang.org/x/text/encoding/unicode"
)

// UserAgent is the User-Agent the official launcher sends with the computer id
func UserAgent(computerID string) string {
	return fmt.Sprintf("SQEXAuthor/2.0.0(Windows 6.2; ja-jp; %s)", computerID)
}

// ComputerID derives the launcher's machine identifier from the host name,
// user name, OS and CPU count
func ComputerID() string {
	host, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return MakeComputerID(host + username + runtime.GOOS + fmt.Sprint(runtime.NumCPU()))
}

// MakeComputerID hashes the UTF-16LE form of machine and prefixes a
// checksum byte that makes the five bytes sum to zero
func MakeComputerID(machine string) string {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(machine)
	if err != nil {
		encoded = machine
	}
	sum := sha1.Sum([]byte(encoded))

	var id [5]byte
	copy(id[1:], sum[:4])
	id[0] = -(id[1] + id[2] + id[3] + id[4])
	return hex.EncodeToString(id[:])
}
