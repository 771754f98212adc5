package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

const keySize = 32

var errShortKey = errors.New("MASTER_KEY must be at least 32 bytes")

func deriveGCM(masterKey string) (cipher.AEAD, error) {
	if len(masterKey) < keySize {
		return nil, errShortKey
	}
	block, err := aes.NewCipher([]byte(masterKey)[:keySize])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals a provider API key with AES-GCM under the master key and
// returns it base64-encoded with the nonce prefixed.
func Encrypt(masterKey, plaintext string) (string, error) {
	gcm, err := deriveGCM(masterKey)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails on a truncated payload or a key that
// does not match the one used to seal.
func Decrypt(masterKey, encoded string) (string, error) {
	gcm, err := deriveGCM(masterKey)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("invalid ciphertext")
	}
	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
