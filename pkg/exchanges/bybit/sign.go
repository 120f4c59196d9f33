package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// sign produces the Bybit V5 request signature:
// HMAC-SHA256(timestamp + apiKey + recvWindow + payload) hex-encoded,
// where payload is the query string for GET and the JSON body for POST.
func sign(timestamp, apiKey, recvWindow, payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + apiKey + recvWindow + payload))
	return hex.EncodeToString(mac.Sum(nil))
}
