package disk

import (
	_ "crypto/sha256" // registers the digest algorithm
	"errors"
	"fmt"
	"github.com/opencontainers/go-digest"
	"strconv"
	"strings"
)

// Entry file names are the percent-encoded key followed by entrySuffix.
// Only [0-9a-zA-Z_-] pass through unescaped, so any key maps to a single
// path element that cannot traverse out of the cache directory, and the
// key can be recovered from the name alone.
//
// Keys whose encoding wouldn't fit into maxEntryName are stored under
// hashedPrefix followed by the SHA-256 of the key instead. The '+' in the
// prefix is always escaped by the encoding, so the two forms never clash.
// The key of a hashed entry is recovered from its info.json.
const (
	entrySuffix  = ".entry"
	hashedPrefix = "sha256+"

	// On macOS and most Linux filesystems the maximum
	// file name length is 255 bytes
	maxEntryName = 240
)

var (
	errIncompleteEscape = errors.New("incomplete percent-escape")
	errHashedEntryName  = errors.New("entry name is hashed")
)

func entryName(key string) string {
	var result strings.Builder

	for _, c := range []byte(key) {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-', c == '_':
			result.WriteByte(c)
		default:
			fmt.Fprintf(&result, "%%%02x", c)
		}
	}

	if result.Len()+len(entrySuffix) > maxEntryName {
		return hashedPrefix + digest.SHA256.FromString(key).Encoded() + entrySuffix
	}

	result.WriteString(entrySuffix)

	return result.String()
}

func isHashedEntryName(name string) bool {
	encoded, ok := strings.CutSuffix(name, entrySuffix)
	if !ok {
		return false
	}

	hash, ok := strings.CutPrefix(encoded, hashedPrefix)

	return ok && digest.SHA256.Validate(hash) == nil
}

// keyFromEntryName decodes the key from the entry file name. It returns
// errHashedEntryName for hashed names, which need to be opened instead.
func keyFromEntryName(name string) (string, error) {
	if isHashedEntryName(name) {
		return "", errHashedEntryName
	}

	encoded, ok := strings.CutSuffix(name, entrySuffix)
	if !ok || encoded == "" {
		return "", fmt.Errorf("%q is not a cache entry", name)
	}

	var result strings.Builder

	for i := 0; i < len(encoded); i++ {
		if encoded[i] != '%' {
			result.WriteByte(encoded[i])

			continue
		}

		if i+3 > len(encoded) {
			return "", errIncompleteEscape
		}

		value, err := strconv.ParseUint(encoded[i+1:i+3], 16, 8)
		if err != nil {
			return "", err
		}

		result.WriteByte(byte(value))

		i += 2
	}

	return result.String(), nil
}
