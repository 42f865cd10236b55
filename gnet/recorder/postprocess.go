//go:build linux

package recorder

import (
	"crypto/rand"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/sofiworker/pktcore/gcompress"
	"github.com/sofiworker/pktcore/gcrypt"
)

const saltSize = 16

// CompressFile gzips path in place, replacing it with path+".gz" and
// removing the plaintext capture file. Intended to run after a Recorder
// has been Close()d.
func CompressFile(path string) (string, error) {
	target := path + ".gz"
	if err := gcompress.NewGzipUtil().CompressFile(path, target); err != nil {
		return "", fmt.Errorf("recorder: compress %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("recorder: remove plaintext %s: %w", path, err)
	}
	return target, nil
}

// EncryptFile derives an AES-256 key from passphrase with Argon2id (a
// fresh random salt per file, prepended to the output), encrypts path's
// contents, writes the result to path+".enc", and removes the plaintext
// capture file. Intended to run after a Recorder has been Close()d.
func EncryptFile(path string, passphrase []byte) (string, error) {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("recorder: read %s: %w", path, err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("recorder: generate salt: %w", err)
	}
	key := argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)

	ciphertext, err := gcrypt.AESEncrypt(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("recorder: encrypt %s: %w", path, err)
	}

	target := path + ".enc"
	if err := os.WriteFile(target, append(salt, ciphertext...), 0o600); err != nil {
		return "", fmt.Errorf("recorder: write %s: %w", target, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("recorder: remove plaintext %s: %w", path, err)
	}
	return target, nil
}

// DecryptFile reverses EncryptFile: it reads the salt-prefixed ciphertext
// from path, re-derives the key from passphrase, and returns the
// plaintext capture bytes.
func DecryptFile(path string, passphrase []byte) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: read %s: %w", path, err)
	}
	if len(raw) < saltSize {
		return nil, fmt.Errorf("recorder: %s too short to contain a salt", path)
	}
	salt, ciphertext := raw[:saltSize], raw[saltSize:]
	key := argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)

	plaintext, err := gcrypt.AESDecrypt(ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("recorder: decrypt %s: %w", path, err)
	}
	return plaintext, nil
}
