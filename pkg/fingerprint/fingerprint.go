// Package fingerprint provides content hashing and cache-key derivation for
// the transform engine. Hashes are used purely as cache keys, not for any
// security purpose, so MD5 is an acceptable (and fast) choice.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/eknkc/basex"
)

// base62Alphabet mirrors the alphabet used throughout the surrounding
// ecosystem for rendering binary identifiers as filesystem-safe strings.
const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var base62 *basex.Encoding

func init() {
	encoding, err := basex.NewEncoding(base62Alphabet)
	if err != nil {
		panic("unable to initialize base62 encoder")
	}
	base62 = encoding
}

// HashBytes returns the 128-bit MD5 digest of data, hex-encoded.
func HashBytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ComposeKey joins parts with a NUL separator and hashes the result,
// returning a short Base62-rendered identifier suitable for use as a
// filesystem path segment (namespacing persistent cache directories, for
// example).
func ComposeKey(parts ...string) string {
	joined := strings.Join(parts, "\x00")
	sum := md5.Sum([]byte(joined))
	return base62.Encode(sum[:])
}

// FileCacheKey computes the default per-file cache key: the MD5 digest of
// the file's contents concatenated with a NUL byte and its relative path.
// Transforms may override this behavior via transform.FileCacheKeyer.
func FileCacheKey(contents []byte, relativePath string) string {
	buffer := make([]byte, 0, len(contents)+1+len(relativePath))
	buffer = append(buffer, contents...)
	buffer = append(buffer, 0x00)
	buffer = append(buffer, relativePath...)
	return HashBytes(buffer)
}
