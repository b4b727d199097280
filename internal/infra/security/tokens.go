package security

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"stockus-platform/internal/domain/model"
)

// referralAlphabet leaves out 0/O/1/I/l so codes survive being read aloud
// or retyped from a screenshot.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referralCodeLen = 8

// ReferralCode returns an 8-character code from the unambiguous alphabet.
func ReferralCode() string {
	b := make([]byte, referralCodeLen)
	if _, err := rand.Read(b); err != nil {
		panic("security: crypto/rand unavailable: " + err.Error())
	}
	for i := range b {
		b[i] = referralAlphabet[int(b[i])%len(referralAlphabet)]
	}
	return string(b)
}

// orderRandLen keeps the full order id well under the gateway's 50-char
// ceiling: "SUB-" + 20 hex chars = 24.
const orderRandLen = 10 // bytes, hex-encoded to 20 chars

// OrderID generates a locally-unique gateway order id with a kind-specific
// prefix. The prefix is a debugging aid only; the reconciler keys everything
// off the full string.
func OrderID(kind model.PaymentKind) string {
	b := make([]byte, orderRandLen)
	if _, err := rand.Read(b); err != nil {
		panic("security: crypto/rand unavailable: " + err.Error())
	}
	prefix := "WS"
	if kind == model.PaymentKindSubscription {
		prefix = "SUB"
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(b))
}

// NotificationSignature computes the gateway's signature formula:
// hex(sha512(orderID + statusCode + grossAmount + serverKey)).
func NotificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// SignatureEqual compares two hex digests in constant time. Hex case is
// normalized first; length mismatch is an immediate reject since it leaks
// nothing an attacker doesn't already know.
func SignatureEqual(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
