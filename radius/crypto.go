package radius

import (
	"crypto/md5"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// userPasswordEncryptScheme is the only supported value of the dictionary
// encrypt flag (RFC 2865 §5.2). encrypt=2 (Tunnel-Password) and encrypt=3
// (Ascend) are out of scope and must fail loudly per spec.
const userPasswordEncryptScheme = 1

// encryptUserPassword applies the RFC 2865 §5.2 MD5-chained XOR
// transform to plaintext, padding it on the right to a multiple of 16
// bytes first.
func encryptUserPassword(plaintext, secret, requestAuthenticator []byte) []byte {
	padded := padTo16(plaintext)
	out := make([]byte, len(padded))

	prev := requestAuthenticator
	for i := 0; i < len(padded); i += 16 {
		b := md5Sum(secret, prev)
		chunk := padded[i : i+16]
		for j := 0; j < 16; j++ {
			out[i+j] = chunk[j] ^ b[j]
		}
		prev = out[i : i+16]
	}
	return out
}

// decryptUserPassword reverses encryptUserPassword and strips the
// zero-byte padding encryptUserPassword added.
func decryptUserPassword(ciphertext, secret, requestAuthenticator []byte) ([]byte, error) {
	if len(ciphertext)%16 != 0 || len(ciphertext) == 0 {
		return nil, &errors.CryptoError{
			Operation: "decode User-Password",
			Message:   "ciphertext length must be a non-zero multiple of 16",
		}
	}

	out := make([]byte, len(ciphertext))
	prev := requestAuthenticator
	for i := 0; i < len(ciphertext); i += 16 {
		b := md5Sum(secret, prev)
		chunk := ciphertext[i : i+16]
		for j := 0; j < 16; j++ {
			out[i+j] = chunk[j] ^ b[j]
		}
		prev = chunk
	}

	return trimTrailingZeros(out), nil
}

func padTo16(b []byte) []byte {
	n := len(b)
	rem := n % 16
	if rem == 0 {
		if n == 0 {
			return make([]byte, 16)
		}
		out := make([]byte, n)
		copy(out, b)
		return out
	}
	out := make([]byte, n+(16-rem))
	copy(out, b)
	return out
}

func trimTrailingZeros(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}

func md5Sum(parts ...[]byte) []byte {
	h := md5.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
